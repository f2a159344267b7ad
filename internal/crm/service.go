package crm

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/pagination"
)

const txTimeout = 5 * time.Second

type Service struct {
	db        *sql.DB
	repo      *MySQLRepository
	publisher notifier.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(db *sql.DB, repo *MySQLRepository, publisher notifier.Publisher, logger *zap.Logger) *Service {
	return &Service{db: db, repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

type LeadInput struct {
	Name    string
	Email   string
	Company *string
	Status  string
	Source  *string
}

type LeadUpdateInput struct {
	Name    *string
	Email   *string
	Company *string
	Status  *string
	Source  *string
}

type DealInput struct {
	Name        string
	CustomerID  string
	Stage       string
	Value       decimal.Decimal
	Probability *int
	CloseDate   *time.Time
}

type DealUpdateInput struct {
	Name        *string
	Stage       *string
	Value       *decimal.Decimal
	Probability *int
	CloseDate   *time.Time
}

func (s *Service) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	return s.repo.FindLeadByID(ctx, id)
}

func (s *Service) ListLeads(ctx context.Context, search, status string, page pagination.Page) ([]domain.Lead, int64, error) {
	return s.repo.ListLeads(ctx, search, status, page)
}

func (s *Service) CreateLead(ctx context.Context, in LeadInput) (*domain.Lead, error) {
	taken, err := s.repo.LeadEmailExists(ctx, in.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("lead email already exists")
	}

	status := in.Status
	if status == "" {
		status = domain.LeadStatusNew
	}

	l := &domain.Lead{
		Name:    in.Name,
		Email:   in.Email,
		Company: in.Company,
		Status:  status,
		Source:  in.Source,
	}
	if err := s.repo.InsertLead(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("lead created", zap.String("leadId", l.ID))
	return s.repo.FindLeadByID(ctx, l.ID)
}

func (s *Service) UpdateLead(ctx context.Context, id string, in LeadUpdateInput) (*domain.Lead, error) {
	l, err := s.repo.FindLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != l.Email {
		taken, err := s.repo.LeadEmailExists(ctx, *in.Email, l.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewConflictError("lead email already exists")
		}
		l.Email = *in.Email
	}

	if in.Name != nil {
		l.Name = *in.Name
	}
	if in.Company != nil {
		l.Company = in.Company
	}
	if in.Status != nil {
		l.Status = *in.Status
	}
	if in.Source != nil {
		l.Source = in.Source
	}

	if err := s.repo.UpdateLead(ctx, l); err != nil {
		return nil, err
	}
	return s.repo.FindLeadByID(ctx, l.ID)
}

func (s *Service) DeleteLead(ctx context.Context, id string) error {
	return s.repo.DeleteLead(ctx, id)
}

// ConversionResult is what POST /leads/{id}/convert returns.
type ConversionResult struct {
	Lead     *domain.Lead     `json:"lead"`
	Customer *domain.Customer `json:"customer"`
	Deal     *domain.Deal     `json:"deal"`
}

// ConvertLead turns a lead into a customer plus an initial deal and marks
// the lead Converted, all in one transaction. Converting twice is a
// conflict, as is a customer already holding the lead's email.
func (s *Service) ConvertLead(ctx context.Context, leadID string, dealValue decimal.Decimal) (*ConversionResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, apperrors.NewInternalError("beginning transaction", err)
	}
	defer tx.Rollback()

	lead, err := s.repo.FindLeadByIDForUpdate(txCtx, tx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == domain.LeadStatusConverted {
		return nil, apperrors.NewConflictError("lead is already converted")
	}

	exists, err := s.repo.CustomerEmailExistsTx(txCtx, tx, lead.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("a customer with this email already exists")
	}

	cust := &domain.Customer{
		Name:     lead.Name,
		Email:    lead.Email,
		Company:  lead.Company,
		Status:   domain.CustomerStatusActive,
		JoinDate: s.now().UTC(),
	}
	if err := s.repo.InsertCustomerTx(txCtx, tx, cust); err != nil {
		return nil, err
	}

	deal := &domain.Deal{
		Name:       lead.Name + " - initial deal",
		CustomerID: cust.ID,
		Stage:      domain.DealStageQualified,
		Value:      dealValue,
	}
	if err := s.repo.InsertDealTx(txCtx, tx, deal); err != nil {
		return nil, err
	}

	if err := s.repo.MarkLeadConverted(txCtx, tx, lead.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("committing lead conversion", err)
	}

	lead.Status = domain.LeadStatusConverted
	s.logger.Info("lead converted",
		zap.String("leadId", lead.ID), zap.String("customerId", cust.ID))

	if err := s.publisher.Publish(ctx, "crm_events", map[string]any{
		"type":        "lead_converted",
		"lead_id":     lead.ID,
		"customer_id": cust.ID,
		"deal_id":     deal.ID,
	}); err != nil {
		s.logger.Warn("publishing crm event failed", zap.Error(err))
	}

	return &ConversionResult{Lead: lead, Customer: cust, Deal: deal}, nil
}

func (s *Service) GetDeal(ctx context.Context, id string) (*domain.Deal, error) {
	return s.repo.FindDealByID(ctx, id)
}

func (s *Service) ListDeals(ctx context.Context, stage string, page pagination.Page) ([]domain.Deal, int64, error) {
	return s.repo.ListDeals(ctx, stage, page)
}

func (s *Service) CreateDeal(ctx context.Context, in DealInput) (*domain.Deal, error) {
	stage := in.Stage
	if stage == "" {
		stage = domain.DealStageQualified
	}

	d := &domain.Deal{
		Name:        in.Name,
		CustomerID:  in.CustomerID,
		Stage:       stage,
		Value:       in.Value,
		Probability: in.Probability,
		CloseDate:   in.CloseDate,
	}
	if err := s.repo.InsertDeal(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.FindDealByID(ctx, d.ID)
}

func (s *Service) UpdateDeal(ctx context.Context, id string, in DealUpdateInput) (*domain.Deal, error) {
	d, err := s.repo.FindDealByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.Stage != nil {
		d.Stage = *in.Stage
	}
	if in.Value != nil {
		d.Value = *in.Value
	}
	if in.Probability != nil {
		d.Probability = in.Probability
	}
	if in.CloseDate != nil {
		d.CloseDate = in.CloseDate
	}

	if err := s.repo.UpdateDeal(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.FindDealByID(ctx, d.ID)
}

func (s *Service) DeleteDeal(ctx context.Context, id string) error {
	return s.repo.DeleteDeal(ctx, id)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.AggregateStats(ctx, s.now())
}
