package worker

import (
	"context"
	"time"

	"keypanel/internal/domain/order"
	"keypanel/internal/infra/db"
	"keypanel/internal/infra/provider"
)

// PollTask is one claimed order joined with everything a poll cycle needs:
// the provider credential to query and the service context for notifications.
type PollTask struct {
	OrderID         string
	Status          order.Status
	ProviderOrderID string
	Attempts        int32
	Quantity        int32
	Link            *string
	ServiceName     string
	Credential      provider.Credential
}

type OrderPollRepository interface {
	// ClaimDue selects up to limit due orders and leases them by pushing
	// next_poll_at to leaseUntil while counting the attempt. Claims use row
	// locks with SKIP LOCKED so concurrent pollers never take the same order.
	ClaimDue(ctx context.Context, tx db.DBTX, limit int32, now, leaseUntil time.Time) ([]PollTask, error)
	// ApplyStatus records a status change along with the next poll schedule
	// (nil ends polling). Returns false when the order was already terminal
	// and nothing changed.
	ApplyStatus(ctx context.Context, tx db.DBTX, orderID string, status order.Status, message string, raw []byte, nextPollAt *time.Time, now time.Time) (bool, error)
	// Touch refreshes the stored provider payload without changing status.
	Touch(ctx context.Context, tx db.DBTX, orderID string, raw []byte) error
	// FindPollTask loads a single order for an on-demand refresh.
	FindPollTask(ctx context.Context, orderID string) (*PollTask, error)
}

type StatusGateway interface {
	QueryStatus(ctx context.Context, cred provider.Credential, providerOrderID string) (*provider.StatusResult, error)
}
