package customer

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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
	r.Get("/{customerID}", c.handleGet)
	r.Put("/{customerID}", c.handleUpdate)
	r.Delete("/{customerID}", c.handleDelete)
	return r
}

type createRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Company  *string `json:"company"`
	Phone    *string `json:"phone"`
	Status   string  `json:"status"`
	JoinDate string  `json:"join_date"`
	Address  *string `json:"address"`
}

type updateRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
	Status  *string `json:"status"`
	Address *string `json:"address"`
}

func (c *Controller) handleList(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	filter := Filter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}

	customers, total, err := c.service.List(r.Context(), filter, page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       customers,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleGet(w http.ResponseWriter, r *http.Request) {
	customer, err := c.service.Get(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, customer)
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

	in := CreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Status:  req.Status,
		Address: req.Address,
	}
	if req.JoinDate != "" {
		d, err := time.Parse("2006-01-02", req.JoinDate)
		if err != nil {
			httpjson.Error(w, logger, apperrors.NewValidationError("invalid join_date",
				apperrors.ValidationDetail{Field: "join_date", Message: "join_date must be YYYY-MM-DD"}))
			return
		}
		in.JoinDate = &d
	}

	customer, err := c.service.Create(r.Context(), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusCreated, "Customer created successfully", customer)
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

	customer, err := c.service.Update(r.Context(), chi.URLParam(r, "customerID"), UpdateInput{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Status:  req.Status,
		Address: req.Address,
	})
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusOK, "Customer updated successfully", customer)
}

func (c *Controller) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "customerID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Customer deleted successfully", nil)
}

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

func validateCreate(req createRequest) error {
	var details []apperrors.ValidationDetail

	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "name", Message: "name is required",
		})
	}
	if req.Email == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "email", Message: "email is required",
		})
	} else if !validEmail(req.Email) {
		details = append(details, apperrors.ValidationDetail{
			Field: "email", Message: "email is not a valid address",
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
	if req.Email != nil && !validEmail(*req.Email) {
		details = append(details, apperrors.ValidationDetail{
			Field: "email", Message: "email is not a valid address",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
