package order

import "strings"

// Status is the internal order status vocabulary. Upstream SMM providers use
// divergent wording; everything entering the system goes through
// NormalizeProviderStatus first so raw provider vocabulary never leaks past
// this package.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status ends the order lifecycle. Terminal
// orders are never polled or mutated again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// SetsCompletedAt reports whether entering this status stamps the order's
// completion time. Failed orders carry no completion timestamp.
func (s Status) SetsCompletedAt() bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo guards status monotonicity: a terminal order accepts no
// further transitions, a non-terminal order accepts any.
func (s Status) CanTransitionTo(_ Status) bool {
	return !s.IsTerminal()
}

var providerStatusTable = map[string]Status{
	"pending":     StatusPending,
	"processing":  StatusProcessing,
	"in progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"in_progress": StatusInProgress,
	"completed":   StatusCompleted,
	"complete":    StatusCompleted,
	"partial":     StatusPartial,
	"canceled":    StatusCancelled,
	"cancelled":   StatusCancelled,
}

// NormalizeProviderStatus maps an arbitrary upstream status string onto the
// internal vocabulary. Unknown values pass through lowercased rather than
// erroring, keeping the system forward-compatible with providers that use
// novel wording; unknown statuses are treated as non-terminal.
func NormalizeProviderStatus(providerStatus string) Status {
	normalized := strings.ToLower(strings.TrimSpace(providerStatus))
	if mapped, ok := providerStatusTable[normalized]; ok {
		return mapped
	}
	return Status(normalized)
}
