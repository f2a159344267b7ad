package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/testutil"
)

func TestService_Create_DerivesStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())

	p, err := svc.Create(context.Background(), CreateInput{
		Name:     "Widget",
		SKU:      "SKU-1",
		Category: "Electronics",
		Price:    decimal.RequireFromString("9.99"),
		Stock:    0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StockStatusOut, p.Status)

	// Restocking flips the derived status back.
	stock := 40
	p, err = svc.Update(context.Background(), p.ID, UpdateInput{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, domain.StockStatusIn, p.Status)
}

func TestService_Create_DuplicateSKU(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateInput{
		Name: "Widget", SKU: "SKU-1", Category: "Misc", Price: decimal.Zero,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		Name: "Widget Two", SKU: "SKU-1", Category: "Misc", Price: decimal.Zero,
	})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestService_Delete_BlockedWhileReferenced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())

	p, err := svc.Create(context.Background(), CreateInput{
		Name: "Widget", SKU: "SKU-1", Category: "Misc",
		Price: decimal.RequireFromString("5.00"), Stock: 10,
	})
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO customers (id, name, email, status, join_date)
		VALUES ('cust-1', 'Acme', 'acme@example.com', 'Active', NOW())`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders (id, order_number, customer_id, status, total, order_date)
		VALUES ('ord-1', 'ORD-001', 'cust-1', 'Pending', 5.00, NOW())`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal)
		VALUES ('item-1', 'ord-1', ?, 1, 5.00, 5.00)`, p.ID)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), p.ID)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	// Still there.
	_, err = svc.Get(context.Background(), p.ID)
	assert.NoError(t, err)
}
