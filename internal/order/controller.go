package order

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/httpjson"
	"smartbiz/internal/pagination"
)

type Controller struct {
	service *Service
	logger  *zap.Logger
}

func NewController(service *Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleList)
	r.Post("/", c.handleCreate)
	r.Get("/stats", c.handleStats)
	r.Get("/{orderID}", c.handleGet)
	r.Put("/{orderID}", c.handleUpdate)
	r.Delete("/{orderID}", c.handleDelete)
	return r
}

type lineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type createRequest struct {
	OrderNumber     string        `json:"order_number"`
	CustomerID      string        `json:"customer_id"`
	OrderItems      []lineRequest `json:"order_items"`
	Status          string        `json:"status"`
	OrderDate       string        `json:"order_date"`
	PaymentMethod   *string       `json:"payment_method"`
	ShippingAddress *string       `json:"shipping_address"`
	Notes           *string       `json:"notes"`
}

type updateRequest struct {
	OrderNumber     *string        `json:"order_number"`
	OrderItems      *[]lineRequest `json:"order_items"`
	Status          *string        `json:"status"`
	OrderDate       *string        `json:"order_date"`
	PaymentMethod   *string        `json:"payment_method"`
	ShippingAddress *string        `json:"shipping_address"`
	Notes           *string        `json:"notes"`
}

func (c *Controller) handleList(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	filter := Filter{
		Search:     r.URL.Query().Get("search"),
		Status:     r.URL.Query().Get("status"),
		CustomerID: r.URL.Query().Get("customer_id"),
	}

	orders, total, err := c.service.List(r.Context(), filter, page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       orders,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleGet(w http.ResponseWriter, r *http.Request) {
	order, err := c.service.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, order)
}

func (c *Controller) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := c.service.Stats(r.Context())
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	httpjson.OK(w, c.logger, http.StatusOK, map[string]any{
		"total_orders": total,
		"completed":    counts[domain.OrderStatusCompleted],
		"processing":   counts[domain.OrderStatusProcessing],
		"shipped":      counts[domain.OrderStatusShipped],
		"pending":      counts[domain.OrderStatusPending],
		"cancelled":    counts[domain.OrderStatusCancelled],
	})
}

func (c *Controller) handleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if err := validateCreate(req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	in := CreateInput{
		OrderNumber:     req.OrderNumber,
		CustomerID:      req.CustomerID,
		Items:           toLineInputs(req.OrderItems),
		Status:          req.Status,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}
	if req.OrderDate != "" {
		d, err := time.Parse("2006-01-02", req.OrderDate)
		if err != nil {
			httpjson.Error(w, logger, apperrors.NewValidationError("invalid order_date",
				apperrors.ValidationDetail{Field: "order_date", Message: "order_date must be YYYY-MM-DD"}))
			return
		}
		in.OrderDate = &d
	}

	order, err := c.service.Create(r.Context(), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusCreated, "Order created successfully", order)
}

func (c *Controller) handleUpdate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if err := validateUpdate(req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	in := UpdateInput{
		OrderNumber:     req.OrderNumber,
		Status:          req.Status,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}
	if req.OrderItems != nil {
		in.Items = toLineInputs(*req.OrderItems)
	}
	if req.OrderDate != nil {
		d, err := time.Parse("2006-01-02", *req.OrderDate)
		if err != nil {
			httpjson.Error(w, logger, apperrors.NewValidationError("invalid order_date",
				apperrors.ValidationDetail{Field: "order_date", Message: "order_date must be YYYY-MM-DD"}))
			return
		}
		in.OrderDate = &d
	}

	order, err := c.service.Update(r.Context(), chi.URLParam(r, "orderID"), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusOK, "Order updated successfully", order)
}

func (c *Controller) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Order deleted successfully", nil)
}

func toLineInputs(lines []lineRequest) []LineInput {
	out := make([]LineInput, len(lines))
	for i, l := range lines {
		out[i] = LineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return out
}

func validateCreate(req createRequest) error {
	var details []apperrors.ValidationDetail

	if req.OrderNumber == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "order_number", Message: "order_number is required",
		})
	}
	if req.CustomerID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "customer_id", Message: "customer_id is required",
		})
	}
	if len(req.OrderItems) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "order_items", Message: "order_items must not be empty",
		})
	}
	if req.Status != "" && !domain.ValidOrderStatus(req.Status) {
		details = append(details, apperrors.ValidationDetail{
			Field: "status", Message: "status is not a known order status",
		})
	}
	details = append(details, validateLineRequests(req.OrderItems)...)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateUpdate(req updateRequest) error {
	var details []apperrors.ValidationDetail

	if req.OrderNumber != nil && *req.OrderNumber == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "order_number", Message: "order_number must not be empty",
		})
	}
	if req.Status != nil && !domain.ValidOrderStatus(*req.Status) {
		details = append(details, apperrors.ValidationDetail{
			Field: "status", Message: "status is not a known order status",
		})
	}
	if req.OrderItems != nil {
		if len(*req.OrderItems) == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field: "order_items", Message: "order_items must not be empty",
			})
		}
		details = append(details, validateLineRequests(*req.OrderItems)...)
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateLineRequests(lines []lineRequest) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	for idx, line := range lines {
		if line.ProductID == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "order_items[" + strconv.Itoa(idx) + "].product_id",
				Message: "product_id is required",
			})
		}
		if line.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "order_items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be a positive integer",
			})
		}
		if line.UnitPrice.IsNegative() {
			details = append(details, apperrors.ValidationDetail{
				Field:   "order_items[" + strconv.Itoa(idx) + "].unit_price",
				Message: "unit_price must be non-negative",
			})
		}
	}
	return details
}
