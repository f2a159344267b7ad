package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CustomerStatusActive   = "Active"
	CustomerStatusInactive = "Inactive"
)

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	Phone     *string   `json:"phone"`
	Status    string    `json:"status"`
	JoinDate  time.Time `json:"join_date"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Aggregates filled in by the repository on reads. TotalSpent excludes
	// cancelled orders.
	TotalOrders int             `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
}
