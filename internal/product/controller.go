package product

import (
	"net/http"

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

func (c *Controller) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleList)
	r.Post("/", c.handleCreate)
	r.Get("/stats", c.handleStats)
	r.Get("/{productID}", c.handleGet)
	r.Put("/{productID}", c.handleUpdate)
	r.Delete("/{productID}", c.handleDelete)
	return r
}

type createRequest struct {
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       *string         `json:"image"`
	Description *string         `json:"description"`
}

type updateRequest struct {
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
}

func (c *Controller) handleList(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	filter := Filter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Status:   r.URL.Query().Get("status"),
	}

	products, total, err := c.service.List(r.Context(), filter, page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       products,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := c.service.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, p)
}

func (c *Controller) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.service.Stats(r.Context())
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, stats)
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

	p, err := c.service.Create(r.Context(), CreateInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusCreated, "Product created successfully", p)
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

	p, err := c.service.Update(r.Context(), chi.URLParam(r, "productID"), UpdateInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusOK, "Product updated successfully", p)
}

func (c *Controller) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "productID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Product deleted successfully", nil)
}

func validateCreate(req createRequest) error {
	var details []apperrors.ValidationDetail

	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "name", Message: "name is required",
		})
	}
	if req.SKU == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "sku", Message: "sku is required",
		})
	}
	if req.Category == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "category", Message: "category is required",
		})
	}
	if req.Price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field: "price", Message: "price must be non-negative",
		})
	}
	if req.Stock < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "stock", Message: "stock must be non-negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateUpdate(req updateRequest) error {
	var details []apperrors.ValidationDetail

	if req.Name != nil && *req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "name", Message: "name must not be empty",
		})
	}
	if req.SKU != nil && *req.SKU == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "sku", Message: "sku must not be empty",
		})
	}
	if req.Price != nil && req.Price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field: "price", Message: "price must be non-negative",
		})
	}
	if req.Stock != nil && *req.Stock < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field: "stock", Message: "stock must be non-negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
