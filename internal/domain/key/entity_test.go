//go:build unit

package key_test

import (
	"testing"
	"time"

	"keypanel/internal/domain/key"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func reconstruct(maxQty, usedQty int32, expiresAt *time.Time, serviceID *uuid.UUID) *key.Key {
	return key.ReconstructKey(
		uuid.New(), "TEST-KEY-0001", "followers", serviceID, uuid.New(),
		maxQty, usedQty, time.Now().Add(-time.Hour), expiresAt,
	)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, int32(1000), reconstruct(1000, 0, nil, nil).Remaining())
	assert.Equal(t, int32(250), reconstruct(1000, 750, nil, nil).Remaining())
	assert.Equal(t, int32(0), reconstruct(1000, 1000, nil, nil).Remaining())
	// over-consumed rows clamp to zero rather than going negative
	assert.Equal(t, int32(0), reconstruct(1000, 1200, nil, nil).Remaining())
}

func TestValidateRedemption(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid key", func(t *testing.T) {
		assert.NoError(t, reconstruct(1000, 500, nil, nil).ValidateRedemption(now))
	})

	t.Run("expired key", func(t *testing.T) {
		past := now.Add(-time.Minute)
		err := reconstruct(1000, 0, &past, nil).ValidateRedemption(now)
		assert.ErrorIs(t, err, key.ErrKeyExpired)
	})

	t.Run("expiry boundary is inclusive", func(t *testing.T) {
		assert.NoError(t, reconstruct(1000, 0, &now, nil).ValidateRedemption(now))
	})

	t.Run("exhausted quota", func(t *testing.T) {
		err := reconstruct(1000, 1000, nil, nil).ValidateRedemption(now)
		assert.ErrorIs(t, err, key.ErrQuotaExhausted)
	})

	t.Run("expiry reported before exhaustion", func(t *testing.T) {
		past := now.Add(-time.Minute)
		err := reconstruct(1000, 1000, &past, nil).ValidateRedemption(now)
		assert.ErrorIs(t, err, key.ErrKeyExpired)
	})
}

func TestCanReserve(t *testing.T) {
	k := reconstruct(1000, 900, nil, nil)

	assert.NoError(t, k.CanReserve(50))
	// exact fit consumes the rest of the quota
	assert.NoError(t, k.CanReserve(100))
	assert.ErrorIs(t, k.CanReserve(101), key.ErrQuotaExceeded)
}

func TestBoundTo(t *testing.T) {
	serviceID := uuid.New()

	t.Run("unbound key accepts any service", func(t *testing.T) {
		assert.True(t, reconstruct(1000, 0, nil, nil).BoundTo(serviceID))
		assert.True(t, reconstruct(1000, 0, nil, nil).BoundTo(uuid.New()))
	})

	t.Run("bound key accepts only its service", func(t *testing.T) {
		k := reconstruct(1000, 0, nil, &serviceID)
		assert.True(t, k.BoundTo(serviceID))
		assert.False(t, k.BoundTo(uuid.New()))
	})
}
