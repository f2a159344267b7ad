package supplier

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

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

func (c *Controller) SupplierRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleListSuppliers)
	r.Post("/", c.handleCreateSupplier)
	r.Get("/{supplierID}", c.handleGetSupplier)
	r.Put("/{supplierID}", c.handleUpdateSupplier)
	r.Delete("/{supplierID}", c.handleDeleteSupplier)
	return r
}

func (c *Controller) PurchaseOrderRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleListPurchaseOrders)
	r.Post("/", c.handleCreatePurchaseOrder)
	r.Get("/{purchaseOrderID}", c.handleGetPurchaseOrder)
	r.Put("/{purchaseOrderID}", c.handleUpdatePurchaseOrder)
	r.Delete("/{purchaseOrderID}", c.handleDeletePurchaseOrder)
	return r
}

type supplierRequest struct {
	Name        *string `json:"name"`
	ContactInfo *string `json:"contact_info"`
}

func (c *Controller) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	suppliers, total, err := c.service.ListSuppliers(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       suppliers,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	sup, err := c.service.GetSupplier(r.Context(), chi.URLParam(r, "supplierID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, sup)
}

func (c *Controller) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req supplierRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if req.Name == nil || *req.Name == "" {
		httpjson.Error(w, logger, apperrors.NewValidationError("validation failed",
			apperrors.ValidationDetail{Field: "name", Message: "name is required"}))
		return
	}

	sup, err := c.service.CreateSupplier(r.Context(), SupplierInput{
		Name:        *req.Name,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusCreated, "Supplier created successfully", sup)
}

func (c *Controller) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req supplierRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if req.Name != nil && *req.Name == "" {
		httpjson.Error(w, logger, apperrors.NewValidationError("validation failed",
			apperrors.ValidationDetail{Field: "name", Message: "name must not be empty"}))
		return
	}

	sup, err := c.service.UpdateSupplier(r.Context(), chi.URLParam(r, "supplierID"), req.Name, req.ContactInfo)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusOK, "Supplier updated successfully", sup)
}

func (c *Controller) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteSupplier(r.Context(), chi.URLParam(r, "supplierID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Supplier deleted successfully", nil)
}

type purchaseOrderCreateRequest struct {
	PONumber    string          `json:"po_number"`
	SupplierID  string          `json:"supplier_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   string          `json:"order_date"`
}

type purchaseOrderUpdateRequest struct {
	Status      *string          `json:"status"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	OrderDate   *string          `json:"order_date"`
}

func (c *Controller) handleListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	filter := PurchaseOrderFilter{
		SupplierID: r.URL.Query().Get("supplier_id"),
		Status:     r.URL.Query().Get("status"),
	}

	orders, total, err := c.service.ListPurchaseOrders(r.Context(), filter, page)
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

func (c *Controller) handleGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := c.service.GetPurchaseOrder(r.Context(), chi.URLParam(r, "purchaseOrderID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, po)
}

func (c *Controller) handleCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req purchaseOrderCreateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	var details []apperrors.ValidationDetail
	if req.PONumber == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "po_number", Message: "po_number is required",
		})
	}
	if req.SupplierID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "supplier_id", Message: "supplier_id is required",
		})
	}
	if req.Status != "" && !validPurchaseOrderStatus(req.Status) {
		details = append(details, apperrors.ValidationDetail{
			Field: "status", Message: "status must be Pending, Shipped or Delivered",
		})
	}
	if req.TotalAmount.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field: "total_amount", Message: "total_amount must not be negative",
		})
	}
	if len(details) > 0 {
		httpjson.Error(w, logger, apperrors.NewValidationError("validation failed", details...))
		return
	}

	in := PurchaseOrderInput{
		PONumber:    req.PONumber,
		SupplierID:  req.SupplierID,
		Status:      req.Status,
		TotalAmount: req.TotalAmount,
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

	po, err := c.service.CreatePurchaseOrder(r.Context(), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusCreated, "Purchase order created successfully", po)
}

func (c *Controller) handleUpdatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req purchaseOrderUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	in := PurchaseOrderUpdate{
		Status:      req.Status,
		TotalAmount: req.TotalAmount,
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

	po, err := c.service.UpdatePurchaseOrder(r.Context(), chi.URLParam(r, "purchaseOrderID"), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusOK, "Purchase order updated successfully", po)
}

func (c *Controller) handleDeletePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeletePurchaseOrder(r.Context(), chi.URLParam(r, "purchaseOrderID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Purchase order deleted successfully", nil)
}
