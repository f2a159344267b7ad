package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineSubtotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		quantity  int
		want      string
	}{
		{"whole amounts", "10.00", 3, "30.00"},
		{"cents multiply cleanly", "19.99", 2, "39.98"},
		{"rounded to two places", "0.333", 3, "1.00"},
		{"single unit", "1234.56", 1, "1234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineSubtotal(decimal.RequireFromString(tt.unitPrice), tt.quantity)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{
		OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled,
	} {
		assert.True(t, ValidOrderStatus(s), s)
	}

	assert.False(t, ValidOrderStatus("Delivered"))
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("pending"))
}
