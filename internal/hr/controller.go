package hr

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
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

// EmployeeRoutes serves /employees.
func (c *Controller) EmployeeRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleListEmployees)
	return r
}

// StatsRoutes serves /hr.
func (c *Controller) StatsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", c.handleStats)
	return r
}

// AttendanceRoutes serves /attendance.
func (c *Controller) AttendanceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleListAttendance)
	r.Post("/", c.handleAttendanceAction)
	return r
}

type attendanceRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

func (c *Controller) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	employees, total, err := c.service.ListEmployees(r.Context(),
		r.URL.Query().Get("search"), r.URL.Query().Get("department"), page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       employees,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.service.Stats(r.Context())
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, stats)
}

func (c *Controller) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpjson.Error(w, c.logger, apperrors.NewValidationError("invalid date",
				apperrors.ValidationDetail{Field: "date", Message: "date must be YYYY-MM-DD"}))
			return
		}
		date = parsed
	}

	records, err := c.service.ListAttendance(r.Context(), date)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, records)
}

func (c *Controller) handleAttendanceAction(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	if req.UserID == "" {
		httpjson.Error(w, c.logger, apperrors.NewValidationError("user_id is required",
			apperrors.ValidationDetail{Field: "user_id", Message: "user_id is required"}))
		return
	}

	switch req.Action {
	case "check_in":
		record, err := c.service.CheckIn(r.Context(), req.UserID)
		if err != nil {
			httpjson.Error(w, c.logger, err)
			return
		}
		httpjson.OKMessage(w, c.logger, http.StatusCreated, "Checked in", record)
	case "check_out":
		record, err := c.service.CheckOut(r.Context(), req.UserID)
		if err != nil {
			httpjson.Error(w, c.logger, err)
			return
		}
		httpjson.OKMessage(w, c.logger, http.StatusOK, "Checked out", record)
	default:
		httpjson.Error(w, c.logger, apperrors.NewValidationError("invalid action",
			apperrors.ValidationDetail{Field: "action", Message: "action must be check_in or check_out"}))
	}
}
