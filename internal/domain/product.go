package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock status labels derived from the numeric stock level.
const (
	StockStatusIn  = "In Stock"
	StockStatusLow = "Low Stock"
	StockStatusOut = "Out of Stock"
)

// LowStockThreshold is the inclusive upper bound of the "Low Stock" tier.
const LowStockThreshold = 10

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Status      string          `json:"status"`
	Image       *string         `json:"image"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockStatusFor maps a stock level to its status label. Status is a pure
// function of stock; every write path recomputes it through here.
func StockStatusFor(stock int) string {
	switch {
	case stock <= 0:
		return StockStatusOut
	case stock <= LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// InventoryValue is price multiplied by units on hand.
func (p Product) InventoryValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}
