package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProjectStatusPlanning   = "Planning"
	ProjectStatusInProgress = "In Progress"
	ProjectStatusReview     = "Review"
	ProjectStatusCompleted  = "Completed"
)

type Project struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Status      string           `json:"status"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	Progress    int              `json:"progress"`
	ManagerID   *string          `json:"manager_id"`
	DeletedAt   *time.Time       `json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
}

const (
	TaskStatusToDo       = "To Do"
	TaskStatusInProgress = "In Progress"
	TaskStatusDone       = "Done"
)

type Task struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ProjectID  string     `json:"project_id"`
	AssigneeID *string    `json:"assignee_id"`
	Status     string     `json:"status"`
	DueDate    *time.Time `json:"due_date"`
}
