package project

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
	r.Get("/{projectID}", c.handleGet)
	r.Put("/{projectID}", c.handleUpdate)
	r.Delete("/{projectID}", c.handleDelete)

	r.Route("/{projectID}/tasks", func(r chi.Router) {
		r.Get("/", c.handleListTasks)
		r.Post("/", c.handleCreateTask)
		r.Get("/{taskID}", c.handleGetTask)
		r.Put("/{taskID}", c.handleUpdateTask)
		r.Delete("/{taskID}", c.handleDeleteTask)
	})
	return r
}

type projectRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Status      *string          `json:"status"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *string          `json:"start_date"`
	EndDate     *string          `json:"end_date"`
	Progress    *int             `json:"progress"`
	ManagerID   *string          `json:"manager_id"`
}

func (c *Controller) handleList(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	filter := Filter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}

	projects, total, err := c.service.ListProjects(r.Context(), filter, page)
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}

	httpjson.Write(w, c.logger, http.StatusOK, map[string]any{
		"success":    true,
		"data":       projects,
		"pagination": page.MetaFor(total),
	})
}

func (c *Controller) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := c.service.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, p)
}

func (c *Controller) handleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req projectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if err := validateProject(req, true); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	in := ProjectInput{
		Description: req.Description,
		Budget:      req.Budget,
		Progress:    req.Progress,
		ManagerID:   req.ManagerID,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	var err error
	if in.StartDate, err = parseDate(req.StartDate, "start_date"); err != nil {
		httpjson.Error(w, logger, err)
		return
	}
	if in.EndDate, err = parseDate(req.EndDate, "end_date"); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	p, err := c.service.CreateProject(r.Context(), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusCreated, "Project created successfully", p)
}

func (c *Controller) handleUpdate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req projectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if err := validateProject(req, false); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	in := ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Budget:      req.Budget,
		Progress:    req.Progress,
		ManagerID:   req.ManagerID,
	}

	var err error
	if in.StartDate, err = parseDate(req.StartDate, "start_date"); err != nil {
		httpjson.Error(w, logger, err)
		return
	}
	if in.EndDate, err = parseDate(req.EndDate, "end_date"); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	p, err := c.service.UpdateProject(r.Context(), chi.URLParam(r, "projectID"), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusOK, "Project updated successfully", p)
}

func (c *Controller) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Project deleted successfully", nil)
}

type taskRequest struct {
	Name       *string `json:"name"`
	AssigneeID *string `json:"assignee_id"`
	Status     *string `json:"status"`
	DueDate    *string `json:"due_date"`
}

func (c *Controller) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.service.ListTasks(r.Context(),
		chi.URLParam(r, "projectID"), r.URL.Query().Get("status"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, tasks)
}

func (c *Controller) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := c.service.GetTask(r.Context(),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"))
	if err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OK(w, c.logger, http.StatusOK, t)
}

func (c *Controller) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req taskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if req.Name == nil || *req.Name == "" {
		httpjson.Error(w, logger, apperrors.NewValidationError("validation failed",
			apperrors.ValidationDetail{Field: "name", Message: "name is required"}))
		return
	}
	if req.Status != nil && !validTaskStatus(*req.Status) {
		httpjson.Error(w, logger, apperrors.NewValidationError("validation failed",
			apperrors.ValidationDetail{Field: "status", Message: "status must be To Do, In Progress or Done"}))
		return
	}

	in := TaskInput{
		Name:       *req.Name,
		AssigneeID: req.AssigneeID,
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	var err error
	if in.DueDate, err = parseDate(req.DueDate, "due_date"); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	t, err := c.service.CreateTask(r.Context(), chi.URLParam(r, "projectID"), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusCreated, "Task created successfully", t)
}

func (c *Controller) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req taskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	if req.Name != nil && *req.Name == "" {
		httpjson.Error(w, logger, apperrors.NewValidationError("validation failed",
			apperrors.ValidationDetail{Field: "name", Message: "name must not be empty"}))
		return
	}

	in := TaskUpdate{
		Name:       req.Name,
		AssigneeID: req.AssigneeID,
		Status:     req.Status,
	}

	var err error
	if in.DueDate, err = parseDate(req.DueDate, "due_date"); err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	t, err := c.service.UpdateTask(r.Context(),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), in)
	if err != nil {
		httpjson.Error(w, logger, err)
		return
	}

	httpjson.OKMessage(w, logger, http.StatusOK, "Task updated successfully", t)
}

func (c *Controller) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteTask(r.Context(),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID")); err != nil {
		httpjson.Error(w, c.logger, err)
		return
	}
	httpjson.OKMessage(w, c.logger, http.StatusOK, "Task deleted successfully", nil)
}

func validateProject(req projectRequest, create bool) error {
	var details []apperrors.ValidationDetail

	if create && (req.Name == nil || *req.Name == "") {
		details = append(details, apperrors.ValidationDetail{
			Field: "name", Message: "name is required",
		})
	}
	if !create && req.Name != nil && *req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field: "name", Message: "name must not be empty",
		})
	}
	if req.Status != nil && !validProjectStatus(*req.Status) {
		details = append(details, apperrors.ValidationDetail{
			Field: "status", Message: "status must be Planning, In Progress, Review or Completed",
		})
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		details = append(details, apperrors.ValidationDetail{
			Field: "progress", Message: "progress must be between 0 and 100",
		})
	}
	if req.Budget != nil && req.Budget.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field: "budget", Message: "budget must not be negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func parseDate(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+field,
			apperrors.ValidationDetail{Field: field, Message: field + " must be YYYY-MM-DD"})
	}
	return &d, nil
}
