package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type OrderView struct {
	OrderID     string     `json:"order_id"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type OrderKeyInfo struct {
	Value    string `json:"value"`
	Category string `json:"category"`
}

type OrderServiceInfo struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Type     string `json:"type"`
}

type OrderDetailView struct {
	OrderID         string           `json:"order_id"`
	Status          string           `json:"status"`
	Message         string           `json:"message"`
	Quantity        int32            `json:"quantity"`
	Link            *string          `json:"link,omitempty"`
	ProviderOrderID *string          `json:"provider_order_id,omitempty"`
	Key             OrderKeyInfo     `json:"key"`
	Service         OrderServiceInfo `json:"service"`
	CreatedAt       time.Time        `json:"created_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

type NotificationView struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	OrderID   string    `json:"order_id"`
	OrderData []byte    `json:"order_data,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
