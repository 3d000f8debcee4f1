//go:build unit

package service_test

import (
	"testing"

	"keypanel/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateOrder(t *testing.T) {
	build := func(active bool) *service.Service {
		return service.ReconstructService(
			uuid.New(), "Instagram Followers", "instagram", "101",
			10, 5000, uuid.New(), active,
		)
	}

	cases := []struct {
		name     string
		active   bool
		quantity int32
		errIs    error
	}{
		{name: "minimum quantity", active: true, quantity: 10},
		{name: "maximum quantity", active: true, quantity: 5000},
		{name: "below minimum", active: true, quantity: 9, errIs: service.ErrQuantityOutOfRange},
		{name: "above maximum", active: true, quantity: 5001, errIs: service.ErrQuantityOutOfRange},
		{name: "inactive service", active: false, quantity: 100, errIs: service.ErrServiceInactive},
		{name: "inactive wins over range", active: false, quantity: 1, errIs: service.ErrServiceInactive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := build(tc.active).ValidateOrder(tc.quantity)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
