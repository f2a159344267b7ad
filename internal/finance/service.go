package finance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	"smartbiz/internal/notifier"
	"smartbiz/internal/pagination"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Expense, error)
	List(ctx context.Context, category string, page pagination.Page) ([]domain.Expense, int64, error)
	Insert(ctx context.Context, e *domain.Expense) error
	Update(ctx context.Context, e *domain.Expense) error
	Delete(ctx context.Context, id string) error
	TotalsByCategory(ctx context.Context) ([]CategoryTotal, error)
}

type Service struct {
	repo      Repository
	publisher notifier.Publisher
	logger    *zap.Logger
}

func NewService(repo Repository, publisher notifier.Publisher, logger *zap.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

type CreateInput struct {
	Description string
	Category    string
	Amount      decimal.Decimal
	Date        *time.Time
	Vendor      *string
}

type UpdateInput struct {
	Description *string
	Category    *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Vendor      *string
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Expense, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, category string, page pagination.Page) ([]domain.Expense, int64, error) {
	return s.repo.List(ctx, category, page)
}

func (s *Service) CategoryTotals(ctx context.Context) ([]CategoryTotal, error) {
	return s.repo.TotalsByCategory(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Expense, error) {
	date := time.Now().UTC()
	if in.Date != nil {
		date = *in.Date
	}

	e := &domain.Expense{
		Description: in.Description,
		Category:    in.Category,
		Amount:      in.Amount,
		Date:        date,
		Vendor:      in.Vendor,
	}

	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("expense recorded",
		zap.String("expenseId", e.ID),
		zap.String("category", e.Category),
		zap.String("amount", e.Amount.String()))
	s.publish(ctx, "expense_recorded", e)

	return s.repo.FindByID(ctx, e.ID)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Expense, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Category != nil {
		e.Category = *in.Category
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
	if in.Vendor != nil {
		e.Vendor = in.Vendor
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("expense updated", zap.String("expenseId", e.ID))
	s.publish(ctx, "expense_updated", e)

	return s.repo.FindByID(ctx, e.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("expense deleted", zap.String("expenseId", e.ID))
	s.publish(ctx, "expense_deleted", e)

	return nil
}

func (s *Service) publish(ctx context.Context, event string, e *domain.Expense) {
	payload := map[string]any{
		"type":       event,
		"expense_id": e.ID,
		"category":   e.Category,
		"amount":     e.Amount.String(),
	}
	if err := s.publisher.Publish(ctx, "finance_events", payload); err != nil {
		s.logger.Warn("publishing finance event failed",
			zap.String("event", event), zap.Error(err))
	}
}
