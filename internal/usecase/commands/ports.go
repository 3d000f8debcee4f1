package commands

import (
	"context"
	"time"

	"keypanel/internal/domain/order"
	"keypanel/internal/infra/db"
	"keypanel/internal/infra/provider"

	"github.com/google/uuid"
)

// Minimal snapshots for command-side reads. Domain entities are reconstructed
// from these in the usecase, never in the repository.

type KeySnapshot struct {
	ID           uuid.UUID
	Value        string
	Category     string
	ServiceID    *uuid.UUID
	CredentialID uuid.UUID
	MaxQuantity  int32
	UsedQuantity int32
	CreatedAt    time.Time
	ExpiresAt    *time.Time
}

type ServiceSnapshot struct {
	ID           uuid.UUID
	Name         string
	Platform     string
	ProviderCode string
	MinQuantity  int32
	MaxQuantity  int32
	CredentialID uuid.UUID
	Active       bool
}

type CredentialSnapshot struct {
	ID      uuid.UUID
	BaseURL string
	Secret  string
	Active  bool
}

type KeyRepository interface {
	FindByValue(ctx context.Context, value string) (*KeySnapshot, error)
	// Reserve atomically increments used_quantity by quantity, guarded by the
	// remaining-quota check in the same statement. KindConflict when the
	// reservation would exceed the quota.
	Reserve(ctx context.Context, tx db.DBTX, keyID uuid.UUID, quantity int32) error
}

type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceSnapshot, error)
}

type CredentialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CredentialSnapshot, error)
}

type OrderRepository interface {
	// Create inserts a pending order row. KindDuplicateKey on order-id
	// collision; callers regenerate and retry.
	Create(ctx context.Context, tx db.DBTX, o *order.Order) error
	// MarkSubmitted moves a pending order to processing, records the provider
	// reference and schedules the first poll.
	MarkSubmitted(ctx context.Context, tx db.DBTX, orderID, providerOrderID string, raw []byte, message string, nextPollAt time.Time) error
	// MarkFailed terminates the order; polling never starts.
	MarkFailed(ctx context.Context, tx db.DBTX, orderID, message string, raw []byte) error
}

type NotificationParams struct {
	Type      string
	Title     string
	Message   string
	OrderID   string
	OrderData []byte
}

type NotificationRepository interface {
	Create(ctx context.Context, tx db.DBTX, params NotificationParams) error
	MarkRead(ctx context.Context, tx db.DBTX, id uuid.UUID) error
	MarkAllRead(ctx context.Context, tx db.DBTX) error
}

type ProviderGateway interface {
	SubmitOrder(ctx context.Context, cred provider.Credential, serviceCode, link string, quantity int32) (*provider.SubmitResult, error)
}
