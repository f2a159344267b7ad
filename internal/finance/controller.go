package finance

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

func (c *Controller) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleList)
	r.Post("/", c.handleCreate)
	r.Get("/by-category", c.handleByCategory)
	r.Get("/{expenseID}", c.handleGet)
	r.Put("/{expenseID}", c.handleUpdate)
	r.Delete("/{expenseID}", c.handleDelete)
	return r
}

type createRequest struct {
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Vendor      *string         `json:"vendor"`
}

type updateRequest struct {
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
	Vendor      *string          `json:"vendor"`
}

func (c *Controller) handleList(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	category := r.URL.Query().Get("category")

	expenses, total, err := c.service.List(r.Context(), category, page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       expenses,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleGet(w http.ResponseWriter, r *http.Request) {
	expense, err := c.service.Get(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, expense)
}

func (c *Controller) handleByCategory(w http.ResponseWriter, r *http.Request) {
	totals, err := c.service.CategoryTotals(r.Context())
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, totals)
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
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		Vendor:      req.Vendor,
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpjson.Error(w, logger, apperrors.NewValidationError("invalid date",
				apperrors.ValidationDetail{Field: "date", Message: "date must be YYYY-MM-DD"}))
			return
		}
		in.Date = &d
	}

	expense, err := c.service.Create(r.Context(), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusCreated, "Expense recorded successfully", expense)
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
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		Vendor:      req.Vendor,
	}
	if req.Date != nil {
		d, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			httpjson.Error(w, logger, apperrors.NewValidationError("invalid date",
				apperrors.ValidationDetail{Field: "date", Message: "date must be YYYY-MM-DD"}))
			return
		}
		in.Date = &d
	}

	expense, err := c.service.Update(r.Context(), chi.URLParam(r, "expenseID"), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusOK, "Expense updated successfully", expense)
}

func (c *Controller) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "expenseID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Expense deleted successfully", nil)
}

func validateCreate(req createRequest) error {
	var details []apperrors.ValidationDetail

	if req.Description == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "description", Message: "description is required",
		})
	}
	if req.Category == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "category", Message: "category is required",
		})
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		details = append(details, apperrors.ValidationDetail{
			Field: "amount", Message: "amount must be greater than zero",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateUpdate(req updateRequest) error {
	var details []apperrors.ValidationDetail

	if req.Description != nil && *req.Description == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "description", Message: "description must not be empty",
		})
	}
	if req.Category != nil && *req.Category == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "category", Message: "category must not be empty",
		})
	}
	if req.Amount != nil && (req.Amount.IsNegative() || req.Amount.IsZero()) {
		details = append(details, apperrors.ValidationDetail{
			Field: "amount", Message: "amount must be greater than zero",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
