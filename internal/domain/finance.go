package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Vendor      *string         `json:"vendor"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Supplier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactInfo *string   `json:"contact_info"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	PurchaseOrderPending   = "Pending"
	PurchaseOrderShipped   = "Shipped"
	PurchaseOrderDelivered = "Delivered"
)

type PurchaseOrder struct {
	ID          string          `json:"id"`
	PONumber    string          `json:"po_number"`
	SupplierID  string          `json:"supplier_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   time.Time       `json:"order_date"`
}
