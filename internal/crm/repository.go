package crm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/pagination"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const leadColumns = `id, name, email, company, status, source, created_at`

func scanLead(row interface{ Scan(...any) error }) (*domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Company, &l.Status, &l.Source, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *MySQLRepository) FindLeadByID(ctx context.Context, id string) (*domain.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads WHERE id = ?"

	l, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("lead not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying lead by id: %w", err)
	}
	return l, nil
}

// FindLeadByIDForUpdate locks the lead row so two conversions of the same
// lead serialize.
func (r *MySQLRepository) FindLeadByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads WHERE id = ? FOR UPDATE"

	l, err := scanLead(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("lead not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying lead for update: %w", err)
	}
	return l, nil
}

func (r *MySQLRepository) ListLeads(ctx context.Context, search, status string, page pagination.Page) ([]domain.Lead, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if search != "" {
		where += " AND (name LIKE ? OR email LIKE ? OR company LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if status != "" {
		where += " AND status = ?"
		args = append(args, status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting leads: %w", err)
	}

	query := "SELECT " + leadColumns + " FROM leads" + where +
		" ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning lead row: %w", err)
		}
		leads = append(leads, *l)
	}
	return leads, total, rows.Err()
}

func (r *MySQLRepository) LeadEmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM leads WHERE email = ? AND id != ?"
	if err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("checking lead email: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) InsertLead(ctx context.Context, l *domain.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	query := `INSERT INTO leads (id, name, email, company, status, source) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, l.ID, l.Name, l.Email, l.Company, l.Status, l.Source); err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdateLead(ctx context.Context, l *domain.Lead) error {
	query := `UPDATE leads SET name = ?, email = ?, company = ?, status = ?, source = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, l.Name, l.Email, l.Company, l.Status, l.Source, l.ID)
	if err != nil {
		return fmt.Errorf("updating lead: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("lead not found")
	}
	return nil
}

// MarkLeadConverted flips the lead status inside the conversion transaction.
func (r *MySQLRepository) MarkLeadConverted(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE leads SET status = ? WHERE id = ?", domain.LeadStatusConverted, id); err != nil {
		return fmt.Errorf("marking lead converted: %w", err)
	}
	return nil
}

func (r *MySQLRepository) DeleteLead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM leads WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting lead: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("lead not found")
	}
	return nil
}

const dealColumns = `id, name, customer_id, stage, value, probability, close_date`

func scanDeal(row interface{ Scan(...any) error }) (*domain.Deal, error) {
	var d domain.Deal
	err := row.Scan(&d.ID, &d.Name, &d.CustomerID, &d.Stage, &d.Value, &d.Probability, &d.CloseDate)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *MySQLRepository) FindDealByID(ctx context.Context, id string) (*domain.Deal, error) {
	query := "SELECT " + dealColumns + " FROM deals WHERE id = ?"

	d, err := scanDeal(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("deal not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying deal by id: %w", err)
	}
	return d, nil
}

func (r *MySQLRepository) ListDeals(ctx context.Context, stage string, page pagination.Page) ([]domain.Deal, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if stage != "" {
		where += " AND stage = ?"
		args = append(args, stage)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM deals"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting deals: %w", err)
	}

	query := "SELECT " + dealColumns + " FROM deals" + where + " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying deals: %w", err)
	}
	defer rows.Close()

	var deals []domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning deal row: %w", err)
		}
		deals = append(deals, *d)
	}
	return deals, total, rows.Err()
}

func (r *MySQLRepository) InsertDeal(ctx context.Context, d *domain.Deal) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	query := `INSERT INTO deals (id, name, customer_id, stage, value, probability, close_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		d.ID, d.Name, d.CustomerID, d.Stage, d.Value, d.Probability, d.CloseDate); err != nil {
		return fmt.Errorf("inserting deal: %w", err)
	}
	return nil
}

// InsertDealTx inserts within the lead conversion transaction.
func (r *MySQLRepository) InsertDealTx(ctx context.Context, tx *sql.Tx, d *domain.Deal) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	query := `INSERT INTO deals (id, name, customer_id, stage, value, probability, close_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		d.ID, d.Name, d.CustomerID, d.Stage, d.Value, d.Probability, d.CloseDate); err != nil {
		return fmt.Errorf("inserting deal: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdateDeal(ctx context.Context, d *domain.Deal) error {
	query := `UPDATE deals SET name = ?, stage = ?, value = ?, probability = ?, close_date = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		d.Name, d.Stage, d.Value, d.Probability, d.CloseDate, d.ID)
	if err != nil {
		return fmt.Errorf("updating deal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("deal not found")
	}
	return nil
}

func (r *MySQLRepository) DeleteDeal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM deals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting deal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("deal not found")
	}
	return nil
}

// InsertCustomerTx creates the customer a converted lead becomes.
func (r *MySQLRepository) InsertCustomerTx(ctx context.Context, tx *sql.Tx, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `INSERT INTO customers (id, name, email, company, status, join_date)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Company, c.Status, c.JoinDate); err != nil {
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}

func (r *MySQLRepository) CustomerEmailExistsTx(ctx context.Context, tx *sql.Tx, email string) (bool, error) {
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers WHERE email = ?", email).Scan(&count); err != nil {
		return false, fmt.Errorf("checking customer email: %w", err)
	}
	return count > 0, nil
}

type Stats struct {
	TotalLeads         int             `json:"total_leads"`
	PipelineValue      decimal.Decimal `json:"pipeline_value"`
	RevenueThisQuarter decimal.Decimal `json:"revenue_this_quarter"`
	ConversionRate     decimal.Decimal `json:"conversion_rate"`
}

// AggregateStats computes the CRM dashboard block. Pipeline value covers
// open stages only; quarterly revenue comes from Closed Won deals.
func (r *MySQLRepository) AggregateStats(ctx context.Context, now time.Time) (*Stats, error) {
	var s Stats

	var converted int64
	var totalLeads int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(status IN (?, ?)), 0) FROM leads",
		domain.LeadStatusQualified, domain.LeadStatusConverted,
	).Scan(&totalLeads, &converted); err != nil {
		return nil, fmt.Errorf("querying lead counts: %w", err)
	}
	s.TotalLeads = int(totalLeads)
	if totalLeads > 0 {
		s.ConversionRate = decimal.NewFromInt(converted).
			Div(decimal.NewFromInt(totalLeads)).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}

	stages := domain.OpenDealStages()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(stages)), ",")
	args := make([]any, len(stages))
	for i, st := range stages {
		args[i] = st
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(value), 0) FROM deals WHERE stage IN ("+placeholders+")",
		args...,
	).Scan(&s.PipelineValue); err != nil {
		return nil, fmt.Errorf("querying pipeline value: %w", err)
	}

	quarterStart := quarterStart(now.UTC())
	if err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(value), 0) FROM deals WHERE stage = ? AND close_date >= ?",
		domain.DealStageClosedWon, quarterStart,
	).Scan(&s.RevenueThisQuarter); err != nil {
		return nil, fmt.Errorf("querying quarterly revenue: %w", err)
	}

	return &s, nil
}

func quarterStart(now time.Time) time.Time {
	quarterMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
	return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
}
