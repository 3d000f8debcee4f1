package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrTerminalTransition = errors.New("order is in a terminal status")
)

// Order is one redemption transaction. Rows are never deleted; terminal
// orders stay on record as the audit trail.
type Order struct {
	id              string
	keyID           uuid.UUID
	serviceID       uuid.UUID
	quantity        int32
	link            *string
	status          Status
	message         string
	providerOrderID *string
	rawResponse     []byte
	pollAttempts    int32
	nextPollAt      *time.Time
	createdAt       time.Time
	completedAt     *time.Time
}

func NewOrder(
	id string,
	keyID, serviceID uuid.UUID,
	quantity int32,
	link *string,
	createdAt time.Time,
) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	return &Order{
		id:        id,
		keyID:     keyID,
		serviceID: serviceID,
		quantity:  quantity,
		link:      link,
		status:    StatusPending,
		message:   "Order received",
		createdAt: createdAt,
	}, nil
}

func ReconstructOrder(
	id string,
	keyID, serviceID uuid.UUID,
	quantity int32,
	link *string,
	status Status,
	message string,
	providerOrderID *string,
	rawResponse []byte,
	pollAttempts int32,
	nextPollAt *time.Time,
	createdAt time.Time,
	completedAt *time.Time,
) *Order {
	return &Order{
		id:              id,
		keyID:           keyID,
		serviceID:       serviceID,
		quantity:        quantity,
		link:            link,
		status:          status,
		message:         message,
		providerOrderID: providerOrderID,
		rawResponse:     rawResponse,
		pollAttempts:    pollAttempts,
		nextPollAt:      nextPollAt,
		createdAt:       createdAt,
		completedAt:     completedAt,
	}
}

// Transition moves the order to a new status, enforcing monotonicity toward
// terminal states and stamping completedAt exactly once.
func (o *Order) Transition(to Status, message string, now time.Time) error {
	if !o.status.CanTransitionTo(to) {
		return ErrTerminalTransition
	}
	o.status = to
	o.message = message
	if to.SetsCompletedAt() && o.completedAt == nil {
		t := now
		o.completedAt = &t
	}
	return nil
}

func (o *Order) IsTerminal() bool {
	return o.status.IsTerminal()
}

func (o *Order) ID() string                { return o.id }
func (o *Order) KeyID() uuid.UUID          { return o.keyID }
func (o *Order) ServiceID() uuid.UUID      { return o.serviceID }
func (o *Order) Quantity() int32           { return o.quantity }
func (o *Order) Link() *string             { return o.link }
func (o *Order) Status() Status            { return o.status }
func (o *Order) Message() string           { return o.message }
func (o *Order) ProviderOrderID() *string  { return o.providerOrderID }
func (o *Order) RawResponse() []byte       { return o.rawResponse }
func (o *Order) PollAttempts() int32       { return o.pollAttempts }
func (o *Order) NextPollAt() *time.Time    { return o.nextPollAt }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
func (o *Order) CompletedAt() *time.Time   { return o.completedAt }
