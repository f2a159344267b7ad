package supplier

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/pagination"
)

type Repository interface {
	FindSupplierByID(ctx context.Context, id string) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context, search string, page pagination.Page) ([]domain.Supplier, int64, error)
	SupplierNameExists(ctx context.Context, name, excludeID string) (bool, error)
	InsertSupplier(ctx context.Context, s *domain.Supplier) error
	UpdateSupplier(ctx context.Context, s *domain.Supplier) error
	DeleteSupplier(ctx context.Context, id string) error
	HasPurchaseOrders(ctx context.Context, supplierID string) (bool, error)

	FindPurchaseOrderByID(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, f PurchaseOrderFilter, page pagination.Page) ([]domain.PurchaseOrder, int64, error)
	PONumberExists(ctx context.Context, poNumber string) (bool, error)
	InsertPurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error
	UpdatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error
	DeletePurchaseOrder(ctx context.Context, id string) error
}

type Service struct {
	repo      Repository
	publisher notifier.Publisher
	logger    *zap.Logger
}

func NewService(repo Repository, publisher notifier.Publisher, logger *zap.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

type SupplierInput struct {
	Name        string
	ContactInfo *string
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return s.repo.FindSupplierByID(ctx, id)
}

func (s *Service) ListSuppliers(ctx context.Context, search string, page pagination.Page) ([]domain.Supplier, int64, error) {
	return s.repo.ListSuppliers(ctx, search, page)
}

func (s *Service) CreateSupplier(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	taken, err := s.repo.SupplierNameExists(ctx, in.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("supplier name already exists")
	}

	sup := &domain.Supplier{
		Name:        in.Name,
		ContactInfo: in.ContactInfo,
	}

	if err := s.repo.InsertSupplier(ctx, sup); err != nil {
		return nil, err
	}

	s.logger.Info("supplier created", zap.String("supplierId", sup.ID))
	s.publish(ctx, "supplier_created", map[string]any{"supplier_id": sup.ID, "name": sup.Name})

	return s.repo.FindSupplierByID(ctx, sup.ID)
}

func (s *Service) UpdateSupplier(ctx context.Context, id string, name *string, contactInfo *string) (*domain.Supplier, error) {
	sup, err := s.repo.FindSupplierByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil && *name != sup.Name {
		taken, err := s.repo.SupplierNameExists(ctx, *name, sup.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewConflictError("supplier name already exists")
		}
		sup.Name = *name
	}
	if contactInfo != nil {
		sup.ContactInfo = contactInfo
	}

	if err := s.repo.UpdateSupplier(ctx, sup); err != nil {
		return nil, err
	}

	s.logger.Info("supplier updated", zap.String("supplierId", sup.ID))
	return s.repo.FindSupplierByID(ctx, sup.ID)
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	if _, err := s.repo.FindSupplierByID(ctx, id); err != nil {
		return err
	}

	owns, err := s.repo.HasPurchaseOrders(ctx, id)
	if err != nil {
		return err
	}
	if owns {
		return apperrors.NewConflictError("supplier has existing purchase orders")
	}

	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return err
	}

	s.logger.Info("supplier deleted", zap.String("supplierId", id))
	s.publish(ctx, "supplier_deleted", map[string]any{"supplier_id": id})
	return nil
}

type PurchaseOrderInput struct {
	PONumber    string
	SupplierID  string
	Status      string
	TotalAmount decimal.Decimal
	OrderDate   *time.Time
}

func (s *Service) GetPurchaseOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return s.repo.FindPurchaseOrderByID(ctx, id)
}

func (s *Service) ListPurchaseOrders(ctx context.Context, f PurchaseOrderFilter, page pagination.Page) ([]domain.PurchaseOrder, int64, error) {
	return s.repo.ListPurchaseOrders(ctx, f, page)
}

func (s *Service) CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput) (*domain.PurchaseOrder, error) {
	if _, err := s.repo.FindSupplierByID(ctx, in.SupplierID); err != nil {
		return nil, err
	}

	taken, err := s.repo.PONumberExists(ctx, in.PONumber)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("po_number already exists")
	}

	status := in.Status
	if status == "" {
		status = domain.PurchaseOrderPending
	}
	orderDate := time.Now().UTC()
	if in.OrderDate != nil {
		orderDate = *in.OrderDate
	}

	po := &domain.PurchaseOrder{
		PONumber:    in.PONumber,
		SupplierID:  in.SupplierID,
		Status:      status,
		TotalAmount: in.TotalAmount,
		OrderDate:   orderDate,
	}

	if err := s.repo.InsertPurchaseOrder(ctx, po); err != nil {
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("purchaseOrderId", po.ID), zap.String("poNumber", po.PONumber))
	s.publish(ctx, "purchase_order_created", map[string]any{
		"purchase_order_id": po.ID,
		"po_number":         po.PONumber,
		"supplier_id":       po.SupplierID,
	})

	return s.repo.FindPurchaseOrderByID(ctx, po.ID)
}

type PurchaseOrderUpdate struct {
	Status      *string
	TotalAmount *decimal.Decimal
	OrderDate   *time.Time
}

func (s *Service) UpdatePurchaseOrder(ctx context.Context, id string, in PurchaseOrderUpdate) (*domain.PurchaseOrder, error) {
	po, err := s.repo.FindPurchaseOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !validPurchaseOrderStatus(*in.Status) {
			return nil, apperrors.NewValidationError("invalid status",
				apperrors.ValidationDetail{Field: "status", Message: "status must be Pending, Shipped or Delivered"})
		}
		po.Status = *in.Status
	}
	if in.TotalAmount != nil {
		po.TotalAmount = *in.TotalAmount
	}
	if in.OrderDate != nil {
		po.OrderDate = *in.OrderDate
	}

	if err := s.repo.UpdatePurchaseOrder(ctx, po); err != nil {
		return nil, err
	}

	s.logger.Info("purchase order updated",
		zap.String("purchaseOrderId", po.ID), zap.String("status", po.Status))
	s.publish(ctx, "purchase_order_updated", map[string]any{
		"purchase_order_id": po.ID,
		"status":            po.Status,
	})

	return s.repo.FindPurchaseOrderByID(ctx, po.ID)
}

func (s *Service) DeletePurchaseOrder(ctx context.Context, id string) error {
	if _, err := s.repo.FindPurchaseOrderByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeletePurchaseOrder(ctx, id); err != nil {
		return err
	}
	s.logger.Info("purchase order deleted", zap.String("purchaseOrderId", id))
	return nil
}

func validPurchaseOrderStatus(status string) bool {
	switch status {
	case domain.PurchaseOrderPending, domain.PurchaseOrderShipped, domain.PurchaseOrderDelivered:
		return true
	}
	return false
}

func (s *Service) publish(ctx context.Context, event string, payload map[string]any) {
	payload["type"] = event
	if err := s.publisher.Publish(ctx, "supplier_events", payload); err != nil {
		s.logger.Warn("publishing supplier event failed",
			zap.String("event", event), zap.Error(err))
	}
}
