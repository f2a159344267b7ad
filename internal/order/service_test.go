package order

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartbiz/internal/customer"
	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/product"
	"smartbiz/internal/testutil"
)

func newTestService(db *sql.DB) *Service {
	return NewService(
		db,
		NewMySQLRepository(db),
		product.NewMySQLRepository(db),
		customer.NewMySQLRepository(db),
		notifier.Noop{},
		zap.NewNop(),
	)
}

func insertTestCustomer(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO customers (id, name, email, status, join_date)
		VALUES (?, ?, ?, 'Active', NOW())
	`, id, name, id+"@example.com")
	require.NoError(t, err)
}

func insertTestProduct(t *testing.T, db *sql.DB, id, name, sku string, price string, stock int) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO products (id, name, sku, category, price, stock, status)
		VALUES (?, ?, ?, 'Electronics', ?, ?, ?)
	`, id, name, sku, price, stock, domain.StockStatusFor(stock))
	require.NoError(t, err)
}

func productStock(t *testing.T, db *sql.DB, id string) (int, string) {
	t.Helper()
	var stock int
	var status string
	err := db.QueryRow("SELECT stock, status FROM products WHERE id = ?", id).Scan(&stock, &status)
	require.NoError(t, err)
	return stock, status
}

func TestService_Create_DecrementsStockAndComputesTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "19.99", 25)
	insertTestProduct(t, db, "prod-2", "Gadget", "SKU-2", "5.50", 8)

	svc := newTestService(db)

	order, err := svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		Items: []LineInput{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
			{ProductID: "prod-2", Quantity: 3, UnitPrice: decimal.RequireFromString("5.50")},
		},
	})
	require.NoError(t, err)

	// 2*19.99 + 3*5.50 = 56.48
	assert.Equal(t, "56.48", order.Total.StringFixed(2))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "Acme Ltd", order.CustomerName)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Widget", order.Items[0].ProductName)

	stock, status := productStock(t, db, "prod-1")
	assert.Equal(t, 23, stock)
	assert.Equal(t, domain.StockStatusIn, status)

	stock, status = productStock(t, db, "prod-2")
	assert.Equal(t, 5, stock)
	assert.Equal(t, domain.StockStatusLow, status)
}

func TestService_Create_InsufficientStockRollsBackEverything(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "10.00", 25)
	insertTestProduct(t, db, "prod-2", "Gadget", "SKU-2", "4.00", 2)

	svc := newTestService(db)

	// One valid line plus one line over stock: nothing may persist.
	_, err := svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		Items: []LineInput{
			{ProductID: "prod-1", Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: "prod-2", Quantity: 3, UnitPrice: decimal.RequireFromString("4.00")},
		},
	})
	require.Error(t, err)

	stockErr, ok := apperrors.IsInsufficientStockError(err)
	require.True(t, ok)
	assert.Equal(t, "Gadget", stockErr.ProductName)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	var orders, items int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&orders))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM order_items").Scan(&items))
	assert.Equal(t, 0, orders)
	assert.Equal(t, 0, items)

	stock, _ := productStock(t, db, "prod-1")
	assert.Equal(t, 25, stock)
	stock, _ = productStock(t, db, "prod-2")
	assert.Equal(t, 2, stock)
}

func TestService_Create_DuplicateProductLinesAggregateAgainstStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "10.00", 10)

	svc := newTestService(db)

	// Each line passes on its own; together they exceed stock.
	_, err := svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		Items: []LineInput{
			{ProductID: "prod-1", Quantity: 6, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: "prod-1", Quantity: 6, UnitPrice: decimal.RequireFromString("10.00")},
		},
	})
	require.Error(t, err)
	_, ok := apperrors.IsInsufficientStockError(err)
	assert.True(t, ok)

	stock, _ := productStock(t, db, "prod-1")
	assert.Equal(t, 10, stock)
}

func TestService_Create_UnknownCustomerAndDuplicateNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "10.00", 10)

	svc := newTestService(db)

	_, err := svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "missing",
		Items:       []LineInput{{ProductID: "prod-1", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")}},
	})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	_, err = svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		Items:       []LineInput{{ProductID: "prod-1", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")}},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		Items:       []LineInput{{ProductID: "prod-1", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")}},
	})
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestService_DeleteRestoresStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "10.00", 10)

	svc := newTestService(db)

	order, err := svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		Items:       []LineInput{{ProductID: "prod-1", Quantity: 10, UnitPrice: decimal.RequireFromString("10.00")}},
	})
	require.NoError(t, err)

	stock, status := productStock(t, db, "prod-1")
	assert.Equal(t, 0, stock)
	assert.Equal(t, domain.StockStatusOut, status)

	require.NoError(t, svc.Delete(context.Background(), order.ID))

	stock, status = productStock(t, db, "prod-1")
	assert.Equal(t, 10, stock)
	assert.Equal(t, domain.StockStatusLow, status)

	var items int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM order_items WHERE order_id = ?", order.ID).Scan(&items))
	assert.Equal(t, 0, items)
}

func TestService_UpdateItemsReconcilesStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "10.00", 20)
	insertTestProduct(t, db, "prod-2", "Gadget", "SKU-2", "5.00", 20)

	svc := newTestService(db)

	order, err := svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		Items:       []LineInput{{ProductID: "prod-1", Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), order.ID, UpdateInput{
		Items: []LineInput{{ProductID: "prod-2", Quantity: 4, UnitPrice: decimal.RequireFromString("5.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "20.00", updated.Total.StringFixed(2))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "prod-2", updated.Items[0].ProductID)

	stock, _ := productStock(t, db, "prod-1")
	assert.Equal(t, 20, stock)
	stock, _ = productStock(t, db, "prod-2")
	assert.Equal(t, 16, stock)
}

func TestService_UpdateHeaderOnlyLeavesStockAlone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "10.00", 20)

	svc := newTestService(db)

	order, err := svc.Create(context.Background(), CreateInput{
		OrderNumber: "ORD-001",
		CustomerID:  "cust-1",
		Items:       []LineInput{{ProductID: "prod-1", Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")}},
	})
	require.NoError(t, err)

	shipped := domain.OrderStatusShipped
	updated, err := svc.Update(context.Background(), order.ID, UpdateInput{Status: &shipped})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)
	assert.Equal(t, "50.00", updated.Total.StringFixed(2))
	require.Len(t, updated.Items, 1)

	stock, _ := productStock(t, db, "prod-1")
	assert.Equal(t, 15, stock)
}

func TestService_StatsCountsByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "10.00", 100)

	svc := newTestService(db)

	for i, status := range []string{domain.OrderStatusPending, domain.OrderStatusPending, domain.OrderStatusCompleted} {
		_, err := svc.Create(context.Background(), CreateInput{
			OrderNumber: "ORD-00" + string(rune('1'+i)),
			CustomerID:  "cust-1",
			Status:      status,
			Items:       []LineInput{{ProductID: "prod-1", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")}},
		})
		require.NoError(t, err)
	}

	counts, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.OrderStatusPending])
	assert.Equal(t, 1, counts[domain.OrderStatusCompleted])
}

// Two orders racing for the same stock must serialize on the product row
// lock: one wins, the other sees the decremented stock and fails, and the
// level never goes negative.
func TestService_Create_ConcurrentOrdersNeverOversell(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	insertTestCustomer(t, db, "cust-1", "Acme Ltd")
	insertTestProduct(t, db, "prod-1", "Widget", "SKU-1", "10.00", 5)

	svc := newTestService(db)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateInput{
				OrderNumber: fmt.Sprintf("ORD-00%d", n+1),
				CustomerID:  "cust-1",
				Items:       []LineInput{{ProductID: "prod-1", Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")}},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var succeeded, insufficient int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		ise, ok := apperrors.IsInsufficientStockError(err)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, 5, ise.Requested)
		assert.Equal(t, 0, ise.Available)
		insufficient++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)

	stock, status := productStock(t, db, "prod-1")
	assert.Equal(t, 0, stock)
	assert.Equal(t, domain.StockStatusOut, status)

	var orders int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&orders))
	assert.Equal(t, 1, orders)
}
