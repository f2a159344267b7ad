package product

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/pagination"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Product, int64, error)
	SKUExists(ctx context.Context, sku, excludeID string) (bool, error)
	Insert(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	ReferencedByOrders(ctx context.Context, id string) (bool, error)
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
	Name        string
	SKU         string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Image       *string
	Description *string
}

type UpdateInput struct {
	Name        *string
	SKU         *string
	Category    *string
	Price       *decimal.Decimal
	Stock       *int
	Image       *string
	Description *string
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Product, int64, error) {
	return s.repo.List(ctx, f, page)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.AggregateStats(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	taken, err := s.repo.SKUExists(ctx, in.SKU, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("sku already exists")
	}

	p := &domain.Product{
		Name:        in.Name,
		SKU:         in.SKU,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		Status:      domain.StockStatusFor(in.Stock),
		Image:       in.Image,
		Description: in.Description,
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("productId", p.ID), zap.String("sku", p.SKU))
	s.publish(ctx, "product_created", p)

	return s.repo.FindByID(ctx, p.ID)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.SKU != nil && *in.SKU != p.SKU {
		taken, err := s.repo.SKUExists(ctx, *in.SKU, p.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewConflictError("sku already exists")
		}
		p.SKU = *in.SKU
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Image != nil {
		p.Image = in.Image
	}
	if in.Description != nil {
		p.Description = in.Description
	}

	// Status is always derived, never client-supplied.
	p.Status = domain.StockStatusFor(p.Stock)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.String("productId", p.ID))
	s.publish(ctx, "product_updated", p)

	return s.repo.FindByID(ctx, p.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := s.repo.ReferencedByOrders(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return apperrors.NewConflictError("product is referenced by existing orders")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted",
		zap.String("productId", p.ID), zap.String("sku", p.SKU))
	s.publish(ctx, "product_deleted", p)

	return nil
}

func (s *Service) publish(ctx context.Context, event string, p *domain.Product) {
	payload := map[string]any{
		"type":       event,
		"product_id": p.ID,
		"sku":        p.SKU,
		"stock":      p.Stock,
		"status":     p.Status,
	}
	if err := s.publisher.Publish(ctx, "product_events", payload); err != nil {
		s.logger.Warn("publishing product event failed",
			zap.String("event", event), zap.Error(err))
	}
}
