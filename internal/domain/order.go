package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Clients may set any of these directly; there is no
// enforced transition table.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer,omitempty"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	OrderDate       time.Time       `json:"date"`
	PaymentMethod   *string         `json:"payment"`
	ShippingAddress *string         `json:"shipping_address"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Subtotal computes quantity times unit price rounded to 2 decimal places.
// The same rounding is applied on every write path so persisted totals stay
// consistent.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
