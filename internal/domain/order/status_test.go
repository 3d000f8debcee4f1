//go:build unit

package order_test

import (
	"testing"

	"keypanel/internal/domain/order"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProviderStatus(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected order.Status
	}{
		{name: "canonical completed", input: "completed", expected: order.StatusCompleted},
		{name: "capitalized completed", input: "Completed", expected: order.StatusCompleted},
		{name: "complete variant", input: "COMPLETE", expected: order.StatusCompleted},
		{name: "in progress with space", input: "In progress", expected: order.StatusInProgress},
		{name: "in progress padded", input: "  in progress  ", expected: order.StatusInProgress},
		{name: "inprogress joined", input: "Inprogress", expected: order.StatusInProgress},
		{name: "in_progress underscored", input: "IN_PROGRESS", expected: order.StatusInProgress},
		{name: "partial", input: "Partial", expected: order.StatusPartial},
		{name: "canceled US spelling", input: "Canceled", expected: order.StatusCancelled},
		{name: "cancelled UK spelling", input: "cancelled", expected: order.StatusCancelled},
		{name: "pending", input: "Pending", expected: order.StatusPending},
		{name: "processing", input: "Processing", expected: order.StatusProcessing},
		{name: "unknown passes through lowercased", input: "Refill Pending", expected: order.Status("refill pending")},
		{name: "empty passes through", input: "", expected: order.Status("")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, order.NormalizeProviderStatus(tc.input))
		})
	}
}

func TestStatusTerminality(t *testing.T) {
	terminal := []order.Status{
		order.StatusCompleted, order.StatusPartial, order.StatusCancelled, order.StatusFailed,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "expected %s to be terminal", s)
		assert.False(t, s.CanTransitionTo(order.StatusCompleted), "terminal %s must reject transitions", s)
	}

	live := []order.Status{
		order.StatusPending, order.StatusProcessing, order.StatusInProgress,
		order.Status("refill pending"),
	}
	for _, s := range live {
		assert.False(t, s.IsTerminal(), "expected %s to be live", s)
		assert.True(t, s.CanTransitionTo(order.StatusCompleted))
	}
}

func TestStatusSetsCompletedAt(t *testing.T) {
	assert.True(t, order.StatusCompleted.SetsCompletedAt())
	assert.True(t, order.StatusPartial.SetsCompletedAt())
	assert.True(t, order.StatusCancelled.SetsCompletedAt())

	// Failure is terminal but never carries a completion timestamp.
	assert.False(t, order.StatusFailed.SetsCompletedAt())
	assert.False(t, order.StatusProcessing.SetsCompletedAt())
}
