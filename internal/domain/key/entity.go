package key

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrKeyExpired     = errors.New("key has expired")
	ErrQuotaExhausted = errors.New("key quota is exhausted")
	ErrQuotaExceeded  = errors.New("requested quantity exceeds remaining quota")
)

// Key is a redemption credential with a usage quota. usedQuantity only ever
// grows; the atomic conditional increment lives in the ledger repository, this
// entity carries the arithmetic and validity rules.
type Key struct {
	id           uuid.UUID
	value        string
	category     string
	serviceID    *uuid.UUID // nil: usable with any service
	credentialID uuid.UUID
	maxQuantity  int32
	usedQuantity int32
	createdAt    time.Time
	expiresAt    *time.Time
}

func ReconstructKey(
	id uuid.UUID,
	value, category string,
	serviceID *uuid.UUID,
	credentialID uuid.UUID,
	maxQuantity, usedQuantity int32,
	createdAt time.Time,
	expiresAt *time.Time,
) *Key {
	return &Key{
		id:           id,
		value:        value,
		category:     category,
		serviceID:    serviceID,
		credentialID: credentialID,
		maxQuantity:  maxQuantity,
		usedQuantity: usedQuantity,
		createdAt:    createdAt,
		expiresAt:    expiresAt,
	}
}

func (k *Key) Remaining() int32 {
	remaining := k.maxQuantity - k.usedQuantity
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (k *Key) IsExpired(now time.Time) bool {
	return k.expiresAt != nil && now.After(*k.expiresAt)
}

// ValidateRedemption checks whether the key can be redeemed at all right now.
func (k *Key) ValidateRedemption(now time.Time) error {
	if k.IsExpired(now) {
		return ErrKeyExpired
	}
	if k.Remaining() <= 0 {
		return ErrQuotaExhausted
	}
	return nil
}

// CanReserve checks the quota arithmetic for a specific quantity. The real
// reservation is a single conditional update at the storage layer; this is the
// fast-path rejection before any row is touched.
func (k *Key) CanReserve(quantity int32) error {
	if k.usedQuantity+quantity > k.maxQuantity {
		return ErrQuotaExceeded
	}
	return nil
}

// BoundTo reports whether the key is restricted to a single service.
func (k *Key) BoundTo(serviceID uuid.UUID) bool {
	return k.serviceID == nil || *k.serviceID == serviceID
}

func (k *Key) ID() uuid.UUID           { return k.id }
func (k *Key) Value() string           { return k.value }
func (k *Key) Category() string        { return k.category }
func (k *Key) ServiceID() *uuid.UUID   { return k.serviceID }
func (k *Key) CredentialID() uuid.UUID { return k.credentialID }
func (k *Key) MaxQuantity() int32      { return k.maxQuantity }
func (k *Key) UsedQuantity() int32     { return k.usedQuantity }
func (k *Key) CreatedAt() time.Time    { return k.createdAt }
func (k *Key) ExpiresAt() *time.Time   { return k.expiresAt }
