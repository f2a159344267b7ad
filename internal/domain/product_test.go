package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStockStatusFor(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		want  string
	}{
		{"zero is out of stock", 0, StockStatusOut},
		{"one is low stock", 1, StockStatusLow},
		{"threshold is low stock", 10, StockStatusLow},
		{"above threshold is in stock", 11, StockStatusIn},
		{"well above threshold", 500, StockStatusIn},
		{"negative clamps to out of stock", -3, StockStatusOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StockStatusFor(tt.stock))
		})
	}
}

func TestProduct_InventoryValue(t *testing.T) {
	p := Product{
		Price: decimal.RequireFromString("19.99"),
		Stock: 3,
	}

	assert.True(t, p.InventoryValue().Equal(decimal.RequireFromString("59.97")))
}

func TestProduct_InventoryValue_ZeroStock(t *testing.T) {
	p := Product{
		Price: decimal.RequireFromString("19.99"),
		Stock: 0,
	}

	assert.True(t, p.InventoryValue().IsZero())
}
