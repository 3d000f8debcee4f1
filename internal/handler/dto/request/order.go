package request

import "github.com/google/uuid"

type CreateOrderRequest struct {
	Key       string    `json:"key" binding:"required"`
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,gt=0"`
	Link      *string   `json:"link" binding:"omitempty,url"`
}
