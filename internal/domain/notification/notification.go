package notification

import "encoding/json"

// Type tags the administrator-facing events the core emits. Notifications are
// raised on terminal-ish order transitions only; intermediate states stay
// silent to avoid noise.
type Type string

const (
	TypeOrderCompleted Type = "order_completed"
	TypeOrderCancelled Type = "order_cancelled"
	TypeOrderFailed    Type = "order_failed"
)

// OrderSnapshot is the opaque order-data blob attached to a notification so
// the admin view stays meaningful even as the order row keeps evolving.
type OrderSnapshot struct {
	OrderID     string  `json:"order_id"`
	ServiceName string  `json:"service_name,omitempty"`
	Quantity    int32   `json:"quantity"`
	Link        *string `json:"link,omitempty"`
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
}

func (s OrderSnapshot) Encode() []byte {
	data, err := json.Marshal(s)
	if err != nil {
		return []byte("{}")
	}
	return data
}
