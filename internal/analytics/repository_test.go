package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/testutil"
)

func seedCustomer(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO customers (id, name, email, status, join_date)
		VALUES (?, ?, ?, 'Active', NOW())`, id, "Customer "+id, id+"@example.com")
	require.NoError(t, err)
}

func seedOrder(t *testing.T, db *sql.DB, id, customerID, status, total string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO orders (id, order_number, customer_id, status, total, order_date)
		VALUES (?, ?, ?, ?, ?, NOW())`, id, "ORD-"+id, customerID, status, total)
	require.NoError(t, err)
}

func window(days int) Window {
	now := time.Now().UTC().Add(time.Hour)
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

func TestRepository_Revenue_ExcludesCancelled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	seedCustomer(t, db, "c1")
	seedOrder(t, db, "o1", "c1", "Completed", "100.00")
	seedOrder(t, db, "o2", "c1", "Cancelled", "500.00")

	revenue, err := repo.Revenue(context.Background(), window(7))
	require.NoError(t, err)
	assert.Equal(t, "100.00", revenue.StringFixed(2))

	// Un-cancelling brings the order back into revenue on the next read.
	_, err = db.Exec("UPDATE orders SET status = 'Completed' WHERE id = 'o2'")
	require.NoError(t, err)

	revenue, err = repo.Revenue(context.Background(), window(7))
	require.NoError(t, err)
	assert.Equal(t, "600.00", revenue.StringFixed(2))
}

func TestRepository_RepeatCustomerRate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	// No orders at all: guarded to zero, not a division error.
	rate, err := repo.RepeatCustomerRate(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.IsZero())

	seedCustomer(t, db, "c1")
	seedCustomer(t, db, "c2")
	seedOrder(t, db, "o1", "c1", "Completed", "10.00")
	seedOrder(t, db, "o2", "c1", "Completed", "10.00")
	seedOrder(t, db, "o3", "c2", "Completed", "10.00")

	rate, err = repo.RepeatCustomerRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "50", rate.String())
}

func TestRepository_TopProducts_TieBreaksByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	seedCustomer(t, db, "c1")
	seedOrder(t, db, "o1", "c1", "Completed", "30.00")

	for _, p := range []struct{ id, name string }{
		{"prod-a", "Alpha"}, {"prod-b", "Beta"},
	} {
		_, err := db.Exec(`INSERT INTO products (id, name, sku, category, price, stock, status)
			VALUES (?, ?, ?, 'Misc', 10.00, 5, 'Low Stock')`, p.id, p.name, "SKU-"+p.id)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal)
			VALUES (?, 'o1', ?, 3, 10.00, 30.00)`, "item-"+p.id, p.id)
		require.NoError(t, err)
	}

	ranks, err := repo.TopProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ranks, 2)

	// Equal units sold: lower id first.
	assert.Equal(t, "prod-a", ranks[0].ID)
	assert.Equal(t, "prod-b", ranks[1].ID)
	assert.Equal(t, 3, ranks[0].UnitsSold)
}

func TestRepository_InventoryValue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	_, err := db.Exec(`INSERT INTO products (id, name, sku, category, price, stock, status)
		VALUES ('p1', 'A', 'SKU-1', 'Misc', 2.50, 4, 'Low Stock'),
		       ('p2', 'B', 'SKU-2', 'Misc', 10.00, 0, 'Out of Stock')`)
	require.NoError(t, err)

	value, err := repo.InventoryValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.00", value.StringFixed(2))
}
