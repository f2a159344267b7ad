package crm

import (
	"context"
	"database/sql"
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

func newCRMTestService(db *sql.DB) *Service {
	return NewService(db, NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())
}

func TestService_ConvertLead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := newCRMTestService(db)

	lead, err := svc.CreateLead(context.Background(), LeadInput{
		Name:  "Grace Hopper",
		Email: "grace@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusNew, lead.Status)

	result, err := svc.ConvertLead(context.Background(), lead.ID, decimal.RequireFromString("1500.00"))
	require.NoError(t, err)

	assert.Equal(t, domain.LeadStatusConverted, result.Lead.Status)
	assert.Equal(t, "grace@example.com", result.Customer.Email)
	assert.Equal(t, domain.DealStageQualified, result.Deal.Stage)
	assert.Equal(t, result.Customer.ID, result.Deal.CustomerID)
	assert.Equal(t, "1500.00", result.Deal.Value.StringFixed(2))

	// All three writes landed.
	var customers, deals int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&customers))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM deals").Scan(&deals))
	assert.Equal(t, 1, customers)
	assert.Equal(t, 1, deals)

	// Converting again is a conflict, and adds nothing.
	_, err = svc.ConvertLead(context.Background(), lead.ID, decimal.Zero)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&customers))
	assert.Equal(t, 1, customers)
}

func TestService_ConvertLead_ExistingCustomerEmailRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := newCRMTestService(db)

	_, err := db.Exec(`INSERT INTO customers (id, name, email, status, join_date)
		VALUES ('cust-1', 'Grace', 'grace@example.com', 'Active', NOW())`)
	require.NoError(t, err)

	lead, err := svc.CreateLead(context.Background(), LeadInput{
		Name: "Grace Hopper", Email: "grace@example.com",
	})
	require.NoError(t, err)

	_, err = svc.ConvertLead(context.Background(), lead.ID, decimal.Zero)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	// Lead stays unconverted and no deal was written.
	got, err := svc.GetLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusNew, got.Status)

	var deals int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM deals").Scan(&deals))
	assert.Equal(t, 0, deals)
}

func TestService_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := newCRMTestService(db)

	for _, l := range []struct{ email, status string }{
		{"a@example.com", domain.LeadStatusNew},
		{"b@example.com", domain.LeadStatusQualified},
		{"c@example.com", domain.LeadStatusConverted},
		{"d@example.com", domain.LeadStatusLost},
	} {
		_, err := svc.CreateLead(context.Background(), LeadInput{
			Name: "Lead", Email: l.email, Status: l.status,
		})
		require.NoError(t, err)
	}

	_, err := db.Exec(`INSERT INTO customers (id, name, email, status, join_date)
		VALUES ('cust-1', 'Acme', 'acme@example.com', 'Active', NOW())`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO deals (id, name, customer_id, stage, value, close_date)
		VALUES ('d1', 'Open deal', 'cust-1', 'Proposal', 1000.00, NULL),
		       ('d2', 'Won deal', 'cust-1', 'Closed Won', 500.00, NOW()),
		       ('d3', 'Lost deal', 'cust-1', 'Closed Lost', 900.00, NOW())`)
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalLeads)
	// Qualified + Converted out of 4.
	assert.Equal(t, "50", stats.ConversionRate.String())
	assert.Equal(t, "1000.00", stats.PipelineValue.StringFixed(2))
	assert.Equal(t, "500.00", stats.RevenueThisQuarter.StringFixed(2))
}
