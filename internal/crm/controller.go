package crm

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
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

// LeadRoutes serves /leads. Writes go through requireAdmin; reads only
// need the surrounding auth.
func (c *Controller) LeadRoutes(requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleListLeads)
	r.Get("/{leadID}", c.handleGetLead)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", c.handleCreateLead)
		r.Put("/{leadID}", c.handleUpdateLead)
		r.Delete("/{leadID}", c.handleDeleteLead)
		r.Post("/{leadID}/convert", c.handleConvertLead)
	})
	return r
}

// DealRoutes serves /deals.
func (c *Controller) DealRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleListDeals)
	r.Post("/", c.handleCreateDeal)
	r.Get("/{dealID}", c.handleGetDeal)
	r.Put("/{dealID}", c.handleUpdateDeal)
	r.Delete("/{dealID}", c.handleDeleteDeal)
	return r
}

// StatsRoutes serves /crm.
func (c *Controller) StatsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", c.handleStats)
	return r
}

type leadRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company"`
	Status  string  `json:"status"`
	Source  *string `json:"source"`
}

type leadUpdateRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Company *string `json:"company"`
	Status  *string `json:"status"`
	Source  *string `json:"source"`
}

type dealRequest struct {
	Name        string          `json:"name"`
	CustomerID  string          `json:"customer_id"`
	Stage       string          `json:"stage"`
	Value       decimal.Decimal `json:"value"`
	Probability *int            `json:"probability"`
	CloseDate   *string         `json:"close_date"`
}

type dealUpdateRequest struct {
	Name        *string          `json:"name"`
	Stage       *string          `json:"stage"`
	Value       *decimal.Decimal `json:"value"`
	Probability *int             `json:"probability"`
	CloseDate   *string          `json:"close_date"`
}

type convertRequest struct {
	DealValue decimal.Decimal `json:"deal_value"`
}

func (c *Controller) handleListLeads(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	leads, total, err := c.service.ListLeads(r.Context(),
		r.URL.Query().Get("search"), r.URL.Query().Get("status"), page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       leads,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleGetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := c.service.GetLead(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, lead)
}

func (c *Controller) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	var details []apperrors.ValidationDetail
	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if req.Email == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	}
	if len(details) > 0 {
		httpjson.Error(w, c.logger, apperrors.NewValidationError("validation failed", details...))
		return
	}

	lead, err := c.service.CreateLead(r.Context(), LeadInput{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Status:  req.Status,
		Source:  req.Source,
	})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusCreated, "Lead created successfully", lead)
}

func (c *Controller) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	var req leadUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	lead, err := c.service.UpdateLead(r.Context(), chi.URLParam(r, "leadID"), LeadUpdateInput{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Status:  req.Status,
		Source:  req.Source,
	})
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusOK, "Lead updated successfully", lead)
}

func (c *Controller) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteLead(r.Context(), chi.URLParam(r, "leadID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Lead deleted successfully", nil)
}

func (c *Controller) handleConvertLead(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if r.ContentLength > 0 {
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, c.logger, err)
			return
		}
	}

	result, err := c.service.ConvertLead(r.Context(), chi.URLParam(r, "leadID"), req.DealValue)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusCreated, "Lead converted successfully", result)
}

func (c *Controller) handleListDeals(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	deals, total, err := c.service.ListDeals(r.Context(), r.URL.Query().Get("stage"), page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       deals,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := c.service.GetDeal(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, deal)
}

func (c *Controller) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req dealRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	var details []apperrors.ValidationDetail
	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if req.CustomerID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "customer_id", Message: "customer_id is required"})
	}
	if req.Value.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "value", Message: "value must be non-negative"})
	}
	if len(details) > 0 {
		httpjson.Error(w, c.logger, apperrors.NewValidationError("validation failed", details...))
		return
	}

	in := DealInput{
		Name:        req.Name,
		CustomerID:  req.CustomerID,
		Stage:       req.Stage,
		Value:       req.Value,
		Probability: req.Probability,
	}
	if req.CloseDate != nil {
		d, err := time.Parse("2006-01-02", *req.CloseDate)
		if err != nil {
			httpjson.Error(w, c.logger, apperrors.NewValidationError("invalid close_date",
				apperrors.ValidationDetail{Field: "close_date", Message: "close_date must be YYYY-MM-DD"}))
			return
		}
		in.CloseDate = &d
	}

	deal, err := c.service.CreateDeal(r.Context(), in)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusCreated, "Deal created successfully", deal)
}

func (c *Controller) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	var req dealUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	in := DealUpdateInput{
		Name:        req.Name,
		Stage:       req.Stage,
		Value:       req.Value,
		Probability: req.Probability,
	}
	if req.CloseDate != nil {
		d, err := time.Parse("2006-01-02", *req.CloseDate)
		if err != nil {
			httpjson.Error(w, c.logger, apperrors.NewValidationError("invalid close_date",
				apperrors.ValidationDetail{Field: "close_date", Message: "close_date must be YYYY-MM-DD"}))
			return
		}
		in.CloseDate = &d
	}

	deal, err := c.service.UpdateDeal(r.Context(), chi.URLParam(r, "dealID"), in)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.OKMessage(w, c.logger, http.StatusOK, "Deal updated successfully", deal)
}

func (c *Controller) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteDeal(r.Context(), chi.URLParam(r, "dealID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Deal deleted successfully", nil)
}

func (c *Controller) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.service.Stats(r.Context())
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, stats)
}
