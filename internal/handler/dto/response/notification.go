package response

import (
	"encoding/json"
	"time"

	"keypanel/internal/usecase/queries"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	OrderID   string          `json:"order_id"`
	OrderData json.RawMessage `json:"order_data,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

func FromNotificationView(view *queries.NotificationView) *NotificationResponse {
	return &NotificationResponse{
		ID:        view.ID,
		Type:      view.Type,
		Title:     view.Title,
		Message:   view.Message,
		OrderID:   view.OrderID,
		OrderData: view.OrderData,
		Read:      view.Read,
		CreatedAt: view.CreatedAt,
	}
}
