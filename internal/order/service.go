package order

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/pagination"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ProductStore is the slice of the product repository the order unit of
// work needs. FindByIDForUpdate must take a row lock so concurrent orders
// against the same product serialize instead of racing the stock check.
type ProductStore interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Product, error)
	SetStock(ctx context.Context, tx *sql.Tx, id string, stock int, status string) error
}

type CustomerStore interface {
	Exists(ctx context.Context, tx *sql.Tx, id string) (bool, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error)
	List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Order, int64, error)
	NumberExists(ctx context.Context, tx *sql.Tx, number, excludeID string) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, o *domain.Order) error
	UpdateHeader(ctx context.Context, tx *sql.Tx, o *domain.Order) error
	Delete(ctx context.Context, tx *sql.Tx, id string) error
	InsertItem(ctx context.Context, tx *sql.Tx, item *domain.OrderItem) error
	ItemsByOrderTx(ctx context.Context, tx *sql.Tx, orderID string) ([]domain.OrderItem, error)
	DeleteItems(ctx context.Context, tx *sql.Tx, orderID string) error
	StatusCounts(ctx context.Context) (map[string]int, error)
}

const txTimeout = 5 * time.Second

// Service keeps Order.total, order_items and Product.stock/status mutually
// consistent. Every mutating operation runs as one REPEATABLE READ
// transaction: all product rows are locked before validation, and any
// failure rolls the whole unit of work back with zero side effects.
type Service struct {
	db        TransactionManager
	orders    OrderRepository
	products  ProductStore
	customers CustomerStore
	publisher notifier.Publisher
	logger    *zap.Logger
}

func NewService(
	db TransactionManager,
	orders OrderRepository,
	products ProductStore,
	customers CustomerStore,
	publisher notifier.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:        db,
		orders:    orders,
		products:  products,
		customers: customers,
		publisher: publisher,
		logger:    logger,
	}
}

type LineInput struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CreateInput struct {
	OrderNumber     string
	CustomerID      string
	Items           []LineInput
	Status          string
	OrderDate       *time.Time
	PaymentMethod   *string
	ShippingAddress *string
	Notes           *string
}

type UpdateInput struct {
	OrderNumber     *string
	Items           []LineInput // nil means "leave items and stock alone"
	Status          *string
	OrderDate       *time.Time
	PaymentMethod   *string
	ShippingAddress *string
	Notes           *string
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Order, int64, error) {
	return s.orders.List(ctx, f, page)
}

func (s *Service) Stats(ctx context.Context) (map[string]int, error) {
	return s.orders.StatusCounts(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, apperrors.NewInternalError("beginning transaction", err)
	}
	// Rollback is a no-op once the transaction committed.
	defer tx.Rollback()

	exists, err := s.customers.Exists(txCtx, tx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("customer not found")
	}

	taken, err := s.orders.NumberExists(txCtx, tx, in.OrderNumber, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflictError("order number already exists")
	}

	items, total, err := s.validateLines(txCtx, tx, in.Items)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	orderDate := time.Now().UTC()
	if in.OrderDate != nil {
		orderDate = *in.OrderDate
	}

	order := &domain.Order{
		OrderNumber:     in.OrderNumber,
		CustomerID:      in.CustomerID,
		Total:           total,
		Status:          status,
		OrderDate:       orderDate,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
	}

	if err := s.orders.Insert(txCtx, tx, order); err != nil {
		return nil, err
	}

	if err := s.applyLines(txCtx, tx, order, items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("committing order create", err)
	}

	s.logger.Info("order created",
		zap.String("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.Int("itemCount", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)))

	s.publish(ctx, "order_created", order)

	return s.orders.FindByID(ctx, order.ID)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, apperrors.NewInternalError("beginning transaction", err)
	}
	defer tx.Rollback()

	order, err := s.orders.FindByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	if in.OrderNumber != nil && *in.OrderNumber != order.OrderNumber {
		taken, err := s.orders.NumberExists(txCtx, tx, *in.OrderNumber, order.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewConflictError("order number already exists")
		}
		order.OrderNumber = *in.OrderNumber
	}

	if in.Status != nil {
		order.Status = *in.Status
	}
	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	if in.PaymentMethod != nil {
		order.PaymentMethod = in.PaymentMethod
	}
	if in.ShippingAddress != nil {
		order.ShippingAddress = in.ShippingAddress
	}
	if in.Notes != nil {
		order.Notes = in.Notes
	}

	// A new item list means full stock reconciliation: give back what the
	// current items hold, then run the create path against the new lines.
	if in.Items != nil {
		if err := s.restoreStock(txCtx, tx, order.ID); err != nil {
			return nil, err
		}
		if err := s.orders.DeleteItems(txCtx, tx, order.ID); err != nil {
			return nil, err
		}

		items, total, err := s.validateLines(txCtx, tx, in.Items)
		if err != nil {
			return nil, err
		}
		if err := s.applyLines(txCtx, tx, order, items); err != nil {
			return nil, err
		}
		order.Total = total
	}

	if err := s.orders.UpdateHeader(txCtx, tx, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("committing order update", err)
	}

	s.logger.Info("order updated", zap.String("orderId", order.ID))
	s.publish(ctx, "order_updated", order)

	return s.orders.FindByID(ctx, order.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return apperrors.NewInternalError("beginning transaction", err)
	}
	defer tx.Rollback()

	order, err := s.orders.FindByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return err
	}

	if err := s.restoreStock(txCtx, tx, order.ID); err != nil {
		return err
	}

	if err := s.orders.Delete(txCtx, tx, order.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("committing order delete", err)
	}

	s.logger.Info("order deleted",
		zap.String("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber))
	s.publish(ctx, "order_deleted", order)

	return nil
}

type validatedLine struct {
	input   LineInput
	product *domain.Product
}

// validateLines locks every referenced product, checks existence and stock,
// and computes the order total. No mutation happens here; a failed line
// aborts before anything is written.
func (s *Service) validateLines(ctx context.Context, tx *sql.Tx, lines []LineInput) ([]validatedLine, decimal.Decimal, error) {
	// Lock in a stable order so two concurrent orders over the same
	// products cannot deadlock.
	sorted := make([]LineInput, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	products := make(map[string]*domain.Product, len(sorted))
	requested := make(map[string]int, len(sorted))

	total := decimal.Zero
	for _, line := range sorted {
		p, ok := products[line.ProductID]
		if !ok {
			var err error
			p, err = s.products.FindByIDForUpdate(ctx, tx, line.ProductID)
			if err != nil {
				if _, notFound := apperrors.IsNotFoundError(err); notFound {
					return nil, decimal.Zero, apperrors.NewNotFoundError(
						fmt.Sprintf("product with id %s not found", line.ProductID))
				}
				return nil, decimal.Zero, err
			}
			products[line.ProductID] = p
		}

		if p.Stock < line.Quantity {
			return nil, decimal.Zero, apperrors.NewInsufficientStockError(p.Name, line.Quantity, p.Stock)
		}

		requested[line.ProductID] += line.Quantity
		if p.Stock < requested[line.ProductID] {
			// The same product appears on several lines and the combined
			// quantity exceeds stock.
			return nil, decimal.Zero, apperrors.NewInsufficientStockError(
				p.Name, requested[line.ProductID], p.Stock)
		}

		total = total.Add(domain.LineSubtotal(line.UnitPrice, line.Quantity))
	}

	validated := make([]validatedLine, len(lines))
	for i, line := range lines {
		validated[i] = validatedLine{input: line, product: products[line.ProductID]}
	}

	return validated, total.Round(2), nil
}

// applyLines persists the items and decrements stock, re-deriving the
// status label per product. Only called after validateLines succeeded.
func (s *Service) applyLines(ctx context.Context, tx *sql.Tx, order *domain.Order, lines []validatedLine) error {
	newStock := make(map[string]int, len(lines))
	for _, line := range lines {
		if _, ok := newStock[line.product.ID]; !ok {
			newStock[line.product.ID] = line.product.Stock
		}
		newStock[line.product.ID] -= line.input.Quantity

		item := domain.OrderItem{
			OrderID:   order.ID,
			ProductID: line.input.ProductID,
			Quantity:  line.input.Quantity,
			UnitPrice: line.input.UnitPrice,
			Subtotal:  domain.LineSubtotal(line.input.UnitPrice, line.input.Quantity),
		}
		if err := s.orders.InsertItem(ctx, tx, &item); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}

	for productID, stock := range newStock {
		if err := s.products.SetStock(ctx, tx, productID, stock, domain.StockStatusFor(stock)); err != nil {
			return err
		}
	}

	return nil
}

// restoreStock gives back the quantities held by the order's current items.
// Product locks are taken in the same sorted order as validateLines so the
// restore pass of one transaction cannot deadlock against the validate pass
// of another.
func (s *Service) restoreStock(ctx context.Context, tx *sql.Tx, orderID string) error {
	items, err := s.orders.ItemsByOrderTx(ctx, tx, orderID)
	if err != nil {
		return err
	}

	giveBack := make(map[string]int, len(items))
	for _, item := range items {
		giveBack[item.ProductID] += item.Quantity
	}

	productIDs := make([]string, 0, len(giveBack))
	for id := range giveBack {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	for _, productID := range productIDs {
		p, err := s.products.FindByIDForUpdate(ctx, tx, productID)
		if err != nil {
			return err
		}

		stock := p.Stock + giveBack[productID]
		if err := s.products.SetStock(ctx, tx, productID, stock, domain.StockStatusFor(stock)); err != nil {
			return err
		}
	}

	return nil
}

// publish runs after commit; delivery failures are logged, never returned.
func (s *Service) publish(ctx context.Context, event string, order *domain.Order) {
	payload := map[string]any{
		"type":         event,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"customer_id":  order.CustomerID,
		"status":       order.Status,
		"total":        order.Total.StringFixed(2),
	}
	if err := s.publisher.Publish(ctx, "order_events", payload); err != nil {
		s.logger.Warn("publishing order event failed",
			zap.String("event", event), zap.Error(err))
	}
}
