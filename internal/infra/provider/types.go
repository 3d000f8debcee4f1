package provider

import (
	"errors"

	"github.com/google/uuid"
)

// ErrUnreachable is the head of every transport-level failure (network,
// timeout, garbled body), detectable with errors.Is. Callers must treat it as
// retryable, never as a provider-reported rejection.
var ErrUnreachable = errors.New("provider unreachable")

// Credential is the connection info for one upstream reseller API. Exactly one
// credential set is used per key; it is resolved at submit/poll time and never
// mixed mid-order.
type Credential struct {
	ID      uuid.UUID
	BaseURL string
	Secret  string
}

// SubmitResult is the provider's answer to an "add" action. Exactly one of
// ProviderOrderID / ErrorMessage is set.
type SubmitResult struct {
	ProviderOrderID string
	ErrorMessage    string
	Raw             []byte
}

func (r *SubmitResult) Rejected() bool {
	return r.ErrorMessage != ""
}

// StatusResult is the raw payload of a "status" action. Status carries the
// provider's own vocabulary; normalization happens in the order domain.
type StatusResult struct {
	Status  string
	Remains string
	Charge  string
	Raw     []byte
}
