package response

import (
	"time"

	"keypanel/internal/usecase/commands"
	"keypanel/internal/usecase/queries"
)

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func FromCreateOrderResult(result *commands.CreateOrderResult) *CreateOrderResponse {
	return &CreateOrderResponse{
		OrderID: result.OrderID,
		Status:  result.Status.String(),
		Message: result.Message,
	}
}

type OrderStatusResponse struct {
	OrderID     string     `json:"order_id"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func FromOrderView(view *queries.OrderView) *OrderStatusResponse {
	return &OrderStatusResponse{
		OrderID:     view.OrderID,
		Status:      view.Status,
		Message:     view.Message,
		CreatedAt:   view.CreatedAt,
		CompletedAt: view.CompletedAt,
	}
}

type OrderKeyResponse struct {
	Value    string `json:"value"`
	Category string `json:"category"`
}

type OrderServiceResponse struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Type     string `json:"type"`
}

type OrderDetailResponse struct {
	OrderID         string               `json:"order_id"`
	Status          string               `json:"status"`
	Message         string               `json:"message"`
	Quantity        int32                `json:"quantity"`
	Link            *string              `json:"link,omitempty"`
	ProviderOrderID *string              `json:"provider_order_id,omitempty"`
	Key             OrderKeyResponse     `json:"key"`
	Service         OrderServiceResponse `json:"service"`
	CreatedAt       time.Time            `json:"created_at"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
}

func FromOrderDetailView(view *queries.OrderDetailView) *OrderDetailResponse {
	return &OrderDetailResponse{
		OrderID:         view.OrderID,
		Status:          view.Status,
		Message:         view.Message,
		Quantity:        view.Quantity,
		Link:            view.Link,
		ProviderOrderID: view.ProviderOrderID,
		Key: OrderKeyResponse{
			Value:    view.Key.Value,
			Category: view.Key.Category,
		},
		Service: OrderServiceResponse{
			Name:     view.Service.Name,
			Platform: view.Service.Platform,
			Type:     view.Service.Type,
		},
		CreatedAt:   view.CreatedAt,
		CompletedAt: view.CompletedAt,
	}
}
