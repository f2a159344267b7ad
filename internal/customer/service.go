package customer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/pagination"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Customer, int64, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	Insert(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id string) error
	HasOrders(ctx context.Context, id string) (bool, error)
	AggregateStats(ctx context.Context) (*Stats, error)
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
	Name     string
	Email    string
	Company  *string
	Phone    *string
	Status   string
	JoinDate *time.Time
	Address  *string
}

type UpdateInput struct {
	Name    *string
	Email   *string
	Company *string
	Phone   *string
	Status  *string
	Address *string
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Customer, int64, error) {
	return s.repo.List(ctx, f, page)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.AggregateStats(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Customer, error) {
	taken, err := s.repo.EmailExists(ctx, in.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("email already exists")
	}

	status := in.Status
	if status == "" {
		status = domain.CustomerStatusActive
	}
	joinDate := time.Now().UTC()
	if in.JoinDate != nil {
		joinDate = *in.JoinDate
	}

	c := &domain.Customer{
		Name:     in.Name,
		Email:    in.Email,
		Company:  in.Company,
		Phone:    in.Phone,
		Status:   status,
		JoinDate: joinDate,
		Address:  in.Address,
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("customerId", c.ID), zap.String("email", c.Email))
	s.publish(ctx, "customer_created", c)

	return s.repo.FindByID(ctx, c.ID)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != c.Email {
		taken, err := s.repo.EmailExists(ctx, *in.Email, c.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewConflictError("email already exists")
		}
		c.Email = *in.Email
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Company != nil {
		c.Company = in.Company
	}
	if in.Phone != nil {
		c.Phone = in.Phone
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.Address != nil {
		c.Address = in.Address
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("customer updated", zap.String("customerId", c.ID))
	s.publish(ctx, "customer_updated", c)

	return s.repo.FindByID(ctx, c.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	owns, err := s.repo.HasOrders(ctx, id)
	if err != nil {
		return err
	}
	if owns {
		return apperrors.NewConflictError("customer has existing orders")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("customer deleted", zap.String("customerId", c.ID))
	s.publish(ctx, "customer_deleted", c)

	return nil
}

func (s *Service) publish(ctx context.Context, event string, c *domain.Customer) {
	payload := map[string]any{
		"type":        event,
		"customer_id": c.ID,
		"email":       c.Email,
		"status":      c.Status,
	}
	if err := s.publisher.Publish(ctx, "customer_events", payload); err != nil {
		s.logger.Warn("publishing customer event failed",
			zap.String("event", event), zap.Error(err))
	}
}
