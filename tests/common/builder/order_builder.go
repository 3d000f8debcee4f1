//go:build unit

package builder

import (
	"time"

	domkey "keypanel/internal/domain/key"
	domservice "keypanel/internal/domain/service"
	reqdto "keypanel/internal/handler/dto/request"
	"keypanel/internal/usecase/commands"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	KeyID           uuid.UUID
	KeyValue        string
	Category        string
	BoundServiceID  *uuid.UUID
	ServiceID       uuid.UUID
	CredentialID    uuid.UUID
	MaxQuantity     int32
	UsedQuantity    int32
	ServiceName     string
	Platform        string
	ProviderCode    string
	MinQuantity     int32
	ServiceMax      int32
	Active          bool
	Quantity        int32
	Link            string
	KeyCreatedAt    time.Time
	ExpiresAt       *time.Time
	CredentialURL   string
	CredentialToken string
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		KeyID:           uuid.New(),
		KeyValue:        "TEST-KEY-0001",
		Category:        "followers",
		ServiceID:       uuid.New(),
		CredentialID:    uuid.New(),
		MaxQuantity:     1000,
		UsedQuantity:    0,
		ServiceName:     "Instagram Followers",
		Platform:        "instagram",
		ProviderCode:    "101",
		MinQuantity:     10,
		ServiceMax:      5000,
		Active:          true,
		Quantity:        100,
		Link:            "https://instagram.com/example",
		KeyCreatedAt:    time.Now().Add(-time.Hour),
		CredentialURL:   "https://provider.example.com/api/v2",
		CredentialToken: "provider-secret",
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildKeySnapshot() *commands.KeySnapshot {
	return &commands.KeySnapshot{
		ID:           b.KeyID,
		Value:        b.KeyValue,
		Category:     b.Category,
		ServiceID:    b.BoundServiceID,
		CredentialID: b.CredentialID,
		MaxQuantity:  b.MaxQuantity,
		UsedQuantity: b.UsedQuantity,
		CreatedAt:    b.KeyCreatedAt,
		ExpiresAt:    b.ExpiresAt,
	}
}

func (b *OrderBuilder) BuildKeyDomain() *domkey.Key {
	return domkey.ReconstructKey(
		b.KeyID, b.KeyValue, b.Category, b.BoundServiceID, b.CredentialID,
		b.MaxQuantity, b.UsedQuantity, b.KeyCreatedAt, b.ExpiresAt,
	)
}

func (b *OrderBuilder) BuildServiceSnapshot() *commands.ServiceSnapshot {
	return &commands.ServiceSnapshot{
		ID:           b.ServiceID,
		Name:         b.ServiceName,
		Platform:     b.Platform,
		ProviderCode: b.ProviderCode,
		MinQuantity:  b.MinQuantity,
		MaxQuantity:  b.ServiceMax,
		CredentialID: b.CredentialID,
		Active:       b.Active,
	}
}

func (b *OrderBuilder) BuildServiceDomain() *domservice.Service {
	return domservice.ReconstructService(
		b.ServiceID, b.ServiceName, b.Platform, b.ProviderCode,
		b.MinQuantity, b.ServiceMax, b.CredentialID, b.Active,
	)
}

func (b *OrderBuilder) BuildCredentialSnapshot() *commands.CredentialSnapshot {
	return &commands.CredentialSnapshot{
		ID:      b.CredentialID,
		BaseURL: b.CredentialURL,
		Secret:  b.CredentialToken,
		Active:  true,
	}
}

func (b *OrderBuilder) BuildCreateRequestDTO() reqdto.CreateOrderRequest {
	link := b.Link
	return reqdto.CreateOrderRequest{
		Key:       b.KeyValue,
		ServiceID: b.ServiceID,
		Quantity:  b.Quantity,
		Link:      &link,
	}
}

func (b *OrderBuilder) BuildCreateInput() commands.CreateOrderInput {
	link := b.Link
	return commands.CreateOrderInput{
		KeyValue:  b.KeyValue,
		ServiceID: b.ServiceID,
		Quantity:  b.Quantity,
		Link:      &link,
	}
}
