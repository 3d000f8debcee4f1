package order

import (
	"crypto/rand"
	"encoding/binary"
)

const (
	idMin  = 10_000_000
	idSpan = 90_000_000
)

// NewID returns a fresh 8-digit numeric order ID. Uniqueness is enforced by
// the store's unique constraint; callers retry on collision.
func NewID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failure is not recoverable here; a constant still
		// round-trips through the collision retry at insert time.
		return "10000000"
	}
	n := binary.BigEndian.Uint64(buf[:]) % idSpan
	return formatID(idMin + n)
}

func formatID(n uint64) string {
	var digits [8]byte
	for i := 7; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[:])
}
