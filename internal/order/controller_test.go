package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "smartbiz/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestValidateCreate(t *testing.T) {
	valid := createRequest{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		OrderItems: []lineRequest{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		},
	}

	tests := []struct {
		name    string
		mutate  func(r *createRequest)
		wantErr bool
		field   string
	}{
		{name: "valid request", mutate: func(r *createRequest) {}},
		{
			name:    "missing order number",
			mutate:  func(r *createRequest) { r.OrderNumber = "" },
			wantErr: true,
			field:   "order_number",
		},
		{
			name:    "missing customer",
			mutate:  func(r *createRequest) { r.CustomerID = "" },
			wantErr: true,
			field:   "customer_id",
		},
		{
			name:    "empty items",
			mutate:  func(r *createRequest) { r.OrderItems = nil },
			wantErr: true,
			field:   "order_items",
		},
		{
			name:    "unknown status",
			mutate:  func(r *createRequest) { r.Status = "mislaid" },
			wantErr: true,
			field:   "status",
		},
		{
			name:    "zero quantity",
			mutate:  func(r *createRequest) { r.OrderItems[0].Quantity = 0 },
			wantErr: true,
			field:   "order_items[0].quantity",
		},
		{
			name:    "negative unit price",
			mutate:  func(r *createRequest) { r.OrderItems[0].UnitPrice = decimal.RequireFromString("-1") },
			wantErr: true,
			field:   "order_items[0].unit_price",
		},
		{
			name:    "missing line product",
			mutate:  func(r *createRequest) { r.OrderItems[0].ProductID = "" },
			wantErr: true,
			field:   "order_items[0].product_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.OrderItems = []lineRequest{valid.OrderItems[0]}
			tt.mutate(&req)

			err := validateCreate(req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			vErr, ok := apperrors.IsValidationError(err)
			assert.True(t, ok)

			fields := make([]string, 0, len(vErr.Details))
			for _, d := range vErr.Details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	t.Run("nil fields are fine", func(t *testing.T) {
		assert.NoError(t, validateUpdate(updateRequest{}))
	})

	t.Run("empty order number rejected", func(t *testing.T) {
		err := validateUpdate(updateRequest{OrderNumber: strPtr("")})
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok)
	})

	t.Run("empty replacement items rejected", func(t *testing.T) {
		items := []lineRequest{}
		err := validateUpdate(updateRequest{OrderItems: &items})
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok)
	})

	t.Run("bad status rejected", func(t *testing.T) {
		err := validateUpdate(updateRequest{Status: strPtr("teleported")})
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok)
	})
}
