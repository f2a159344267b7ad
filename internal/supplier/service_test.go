package supplier

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
	"smartbiz/internal/pagination"
	"smartbiz/internal/testutil"
)

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())
	return svc, func() { testutil.CleanupTestDB(t, db) }
}

func TestService_SupplierLifecycle(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	contact := "orders@nordic-parts.example"
	sup, err := svc.CreateSupplier(context.Background(), SupplierInput{
		Name:        "Nordic Parts",
		ContactInfo: &contact,
	})
	require.NoError(t, err)
	require.NotNil(t, sup.ContactInfo)
	assert.Equal(t, contact, *sup.ContactInfo)

	newName := "Nordic Parts AB"
	got, err := svc.UpdateSupplier(context.Background(), sup.ID, &newName, nil)
	require.NoError(t, err)
	assert.Equal(t, "Nordic Parts AB", got.Name)
	require.NotNil(t, got.ContactInfo)

	// Name is unique across suppliers.
	_, err = svc.CreateSupplier(context.Background(), SupplierInput{Name: "Nordic Parts AB"})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	require.NoError(t, svc.DeleteSupplier(context.Background(), sup.ID))

	_, err = svc.GetSupplier(context.Background(), sup.ID)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestService_DeleteSupplier_BlockedWhileOwningOrders(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	sup, err := svc.CreateSupplier(context.Background(), SupplierInput{Name: "Nordic Parts"})
	require.NoError(t, err)

	_, err = svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		PONumber:    "PO-001",
		SupplierID:  sup.ID,
		TotalAmount: decimal.RequireFromString("250.00"),
	})
	require.NoError(t, err)

	err = svc.DeleteSupplier(context.Background(), sup.ID)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestService_CreatePurchaseOrder(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	sup, err := svc.CreateSupplier(context.Background(), SupplierInput{Name: "Nordic Parts"})
	require.NoError(t, err)

	po, err := svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		PONumber:    "PO-001",
		SupplierID:  sup.ID,
		TotalAmount: decimal.RequireFromString("250.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderPending, po.Status)
	assert.Equal(t, "250.00", po.TotalAmount.StringFixed(2))

	// Same PO number again conflicts.
	_, err = svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		PONumber:   "PO-001",
		SupplierID: sup.ID,
	})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	// Unknown supplier is a not found, not a foreign key blowup.
	_, err = svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		PONumber:   "PO-002",
		SupplierID: "missing",
	})
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestService_UpdatePurchaseOrderStatus(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	sup, err := svc.CreateSupplier(context.Background(), SupplierInput{Name: "Nordic Parts"})
	require.NoError(t, err)

	po, err := svc.CreatePurchaseOrder(context.Background(), PurchaseOrderInput{
		PONumber:    "PO-001",
		SupplierID:  sup.ID,
		TotalAmount: decimal.RequireFromString("250.00"),
	})
	require.NoError(t, err)

	shipped := domain.PurchaseOrderShipped
	got, err := svc.UpdatePurchaseOrder(context.Background(), po.ID, PurchaseOrderUpdate{Status: &shipped})
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderShipped, got.Status)

	bogus := "Teleported"
	_, err = svc.UpdatePurchaseOrder(context.Background(), po.ID, PurchaseOrderUpdate{Status: &bogus})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestService_ListPurchaseOrders_Filters(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()

	first, err := svc.CreateSupplier(context.Background(), SupplierInput{Name: "Nordic Parts"})
	require.NoError(t, err)
	second, err := svc.CreateSupplier(context.Background(), SupplierInput{Name: "Baltic Metals"})
	require.NoError(t, err)

	for _, in := range []PurchaseOrderInput{
		{PONumber: "PO-001", SupplierID: first.ID},
		{PONumber: "PO-002", SupplierID: first.ID, Status: domain.PurchaseOrderDelivered},
		{PONumber: "PO-003", SupplierID: second.ID},
	} {
		_, err := svc.CreatePurchaseOrder(context.Background(), in)
		require.NoError(t, err)
	}

	page := pagination.Page{Number: 1, Size: 10}

	bySupplier, total, err := svc.ListPurchaseOrders(context.Background(),
		PurchaseOrderFilter{SupplierID: first.ID}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, bySupplier, 2)

	delivered, total, err := svc.ListPurchaseOrders(context.Background(),
		PurchaseOrderFilter{Status: domain.PurchaseOrderDelivered}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, delivered, 1)
	assert.Equal(t, "PO-002", delivered[0].PONumber)
}
