package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/pagination"
	"smartbiz/internal/testutil"
)

func TestRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	p := &domain.Product{
		Name:     "Widget",
		SKU:      "SKU-1",
		Category: "Electronics",
		Price:    decimal.RequireFromString("19.99"),
		Stock:    7,
		Status:   domain.StockStatusFor(7),
	}
	require.NoError(t, repo.Insert(context.Background(), p))
	require.NotEmpty(t, p.ID)

	got, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "19.99", got.Price.StringFixed(2))
	assert.Equal(t, domain.StockStatusLow, got.Status)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	_, err := repo.FindByID(context.Background(), "missing")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestRepository_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	fixtures := []struct {
		name, sku, category string
		stock               int
	}{
		{"Laptop Pro", "LP-1", "Electronics", 50},
		{"Laptop Air", "LA-1", "Electronics", 3},
		{"Desk Chair", "DC-1", "Furniture", 0},
	}
	for _, f := range fixtures {
		require.NoError(t, repo.Insert(context.Background(), &domain.Product{
			Name:     f.name,
			SKU:      f.sku,
			Category: f.category,
			Price:    decimal.RequireFromString("100"),
			Stock:    f.stock,
			Status:   domain.StockStatusFor(f.stock),
		}))
	}

	page := pagination.Page{Number: 1, Size: 10}

	products, total, err := repo.List(context.Background(), Filter{Search: "Laptop"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, products, 2)

	products, total, err = repo.List(context.Background(), Filter{Category: "Furniture"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Desk Chair", products[0].Name)

	_, total, err = repo.List(context.Background(), Filter{Status: domain.StockStatusLow}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestRepository_AggregateStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	stocks := []int{50, 3, 0}
	for i, stock := range stocks {
		require.NoError(t, repo.Insert(context.Background(), &domain.Product{
			Name:     "P",
			SKU:      "SKU-" + string(rune('A'+i)),
			Category: "Misc",
			Price:    decimal.RequireFromString("2.00"),
			Stock:    stock,
			Status:   domain.StockStatusFor(stock),
		}))
	}

	stats, err := repo.AggregateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.InStock)
	assert.Equal(t, 1, stats.LowStock)
	assert.Equal(t, 1, stats.OutOfStock)
	// (50+3+0) * 2.00
	assert.Equal(t, "106.00", stats.InventoryValue.StringFixed(2))
}

func TestRepository_SKUExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLRepository(db)

	p := &domain.Product{Name: "Widget", SKU: "SKU-1", Category: "Misc", Price: decimal.Zero}
	require.NoError(t, repo.Insert(context.Background(), p))

	taken, err := repo.SKUExists(context.Background(), "SKU-1", "")
	require.NoError(t, err)
	assert.True(t, taken)

	// The owning product is excluded when updating it.
	taken, err = repo.SKUExists(context.Background(), "SKU-1", p.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}
