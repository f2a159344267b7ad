package project

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
	FindProjectByID(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context, f Filter, page pagination.Page) ([]domain.Project, int64, error)
	InsertProject(ctx context.Context, p *domain.Project) error
	UpdateProject(ctx context.Context, p *domain.Project) error
	SoftDeleteProject(ctx context.Context, id string) error
	UserExists(ctx context.Context, id string) (bool, error)

	FindTaskByID(ctx context.Context, projectID, taskID string) (*domain.Task, error)
	ListTasks(ctx context.Context, projectID, status string) ([]domain.Task, error)
	InsertTask(ctx context.Context, t *domain.Task) error
	UpdateTask(ctx context.Context, t *domain.Task) error
	DeleteTask(ctx context.Context, projectID, taskID string) error
}

type Service struct {
	repo      Repository
	publisher notifier.Publisher
	logger    *zap.Logger
}

func NewService(repo Repository, publisher notifier.Publisher, logger *zap.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

type ProjectInput struct {
	Name        string
	Description *string
	Status      string
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Progress    *int
	ManagerID   *string
}

type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *string
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Progress    *int
	ManagerID   *string
}

func (s *Service) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.FindProjectByID(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context, f Filter, page pagination.Page) ([]domain.Project, int64, error) {
	return s.repo.ListProjects(ctx, f, page)
}

func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (*domain.Project, error) {
	if in.ManagerID != nil {
		if err := s.requireUser(ctx, *in.ManagerID, "manager not found"); err != nil {
			return nil, err
		}
	}

	status := in.Status
	if status == "" {
		status = domain.ProjectStatusPlanning
	}
	progress := 0
	if in.Progress != nil {
		progress = *in.Progress
	}

	p := &domain.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		Budget:      in.Budget,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Progress:    progress,
		ManagerID:   in.ManagerID,
	}

	if err := s.repo.InsertProject(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("project created", zap.String("projectId", p.ID), zap.String("status", p.Status))
	s.publish(ctx, "project_created", map[string]any{"project_id": p.ID, "name": p.Name})

	return s.repo.FindProjectByID(ctx, p.ID)
}

func (s *Service) UpdateProject(ctx context.Context, id string, in ProjectUpdate) (*domain.Project, error) {
	p, err := s.repo.FindProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.ManagerID != nil {
		if err := s.requireUser(ctx, *in.ManagerID, "manager not found"); err != nil {
			return nil, err
		}
		p.ManagerID = in.ManagerID
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Budget != nil {
		p.Budget = in.Budget
	}
	if in.StartDate != nil {
		p.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = in.EndDate
	}
	if in.Progress != nil {
		p.Progress = *in.Progress
	}

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("project updated", zap.String("projectId", p.ID))
	s.publish(ctx, "project_updated", map[string]any{"project_id": p.ID, "status": p.Status})

	return s.repo.FindProjectByID(ctx, p.ID)
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.repo.FindProjectByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteProject(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted", zap.String("projectId", id))
	s.publish(ctx, "project_deleted", map[string]any{"project_id": id})
	return nil
}

type TaskInput struct {
	Name       string
	AssigneeID *string
	Status     string
	DueDate    *time.Time
}

type TaskUpdate struct {
	Name       *string
	AssigneeID *string
	Status     *string
	DueDate    *time.Time
}

func (s *Service) GetTask(ctx context.Context, projectID, taskID string) (*domain.Task, error) {
	if _, err := s.repo.FindProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.FindTaskByID(ctx, projectID, taskID)
}

func (s *Service) ListTasks(ctx context.Context, projectID, status string) ([]domain.Task, error) {
	if _, err := s.repo.FindProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, projectID, status)
}

func (s *Service) CreateTask(ctx context.Context, projectID string, in TaskInput) (*domain.Task, error) {
	if _, err := s.repo.FindProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		if err := s.requireUser(ctx, *in.AssigneeID, "assignee not found"); err != nil {
			return nil, err
		}
	}

	status := in.Status
	if status == "" {
		status = domain.TaskStatusToDo
	}

	t := &domain.Task{
		Name:       in.Name,
		ProjectID:  projectID,
		AssigneeID: in.AssigneeID,
		Status:     status,
		DueDate:    in.DueDate,
	}

	if err := s.repo.InsertTask(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		zap.String("taskId", t.ID), zap.String("projectId", projectID))
	return s.repo.FindTaskByID(ctx, projectID, t.ID)
}

func (s *Service) UpdateTask(ctx context.Context, projectID, taskID string, in TaskUpdate) (*domain.Task, error) {
	if _, err := s.repo.FindProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	t, err := s.repo.FindTaskByID(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	if in.AssigneeID != nil {
		if err := s.requireUser(ctx, *in.AssigneeID, "assignee not found"); err != nil {
			return nil, err
		}
		t.AssigneeID = in.AssigneeID
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Status != nil {
		if !validTaskStatus(*in.Status) {
			return nil, apperrors.NewValidationError("invalid status",
				apperrors.ValidationDetail{Field: "status", Message: "status must be To Do, In Progress or Done"})
		}
		t.Status = *in.Status
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("task updated", zap.String("taskId", t.ID), zap.String("status", t.Status))
	return s.repo.FindTaskByID(ctx, projectID, t.ID)
}

func (s *Service) DeleteTask(ctx context.Context, projectID, taskID string) error {
	if _, err := s.repo.FindProjectByID(ctx, projectID); err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, projectID, taskID); err != nil {
		return err
	}
	s.logger.Info("task deleted", zap.String("taskId", taskID))
	return nil
}

func (s *Service) requireUser(ctx context.Context, id, message string) error {
	exists, err := s.repo.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(message)
	}
	return nil
}

func validTaskStatus(status string) bool {
	switch status {
	case domain.TaskStatusToDo, domain.TaskStatusInProgress, domain.TaskStatusDone:
		return true
	}
	return false
}

func validProjectStatus(status string) bool {
	switch status {
	case domain.ProjectStatusPlanning, domain.ProjectStatusInProgress,
		domain.ProjectStatusReview, domain.ProjectStatusCompleted:
		return true
	}
	return false
}

func (s *Service) publish(ctx context.Context, event string, payload map[string]any) {
	payload["type"] = event
	if err := s.publisher.Publish(ctx, "project_events", payload); err != nil {
		s.logger.Warn("publishing project event failed",
			zap.String("event", event), zap.Error(err))
	}
}
