package project

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/pagination"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const projectColumns = `id, name, description, status, budget, start_date, end_date, progress, manager_id, deleted_at, created_at`

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Budget,
		&p.StartDate, &p.EndDate, &p.Progress, &p.ManagerID, &p.DeletedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLRepository) FindProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects WHERE id = ? AND deleted_at IS NULL"

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying project by id: %w", err)
	}
	return p, nil
}

type Filter struct {
	Search string
	Status string
}

func (r *MySQLRepository) ListProjects(ctx context.Context, f Filter, page pagination.Page) ([]domain.Project, int64, error) {
	where := " WHERE deleted_at IS NULL"
	args := []any{}

	if f.Search != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+f.Search+"%")
	}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting projects: %w", err)
	}

	query := "SELECT " + projectColumns + " FROM projects" + where +
		" ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, total, rows.Err()
}

func (r *MySQLRepository) InsertProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `INSERT INTO projects (id, name, description, status, budget, start_date, end_date, progress, manager_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Status, p.Budget, p.StartDate, p.EndDate, p.Progress, p.ManagerID); err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdateProject(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects
		SET name = ?, description = ?, status = ?, budget = ?, start_date = ?, end_date = ?, progress = ?, manager_id = ?
		WHERE id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.Description, p.Status, p.Budget, p.StartDate, p.EndDate, p.Progress, p.ManagerID, p.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("project not found")
	}
	return nil
}

// SoftDeleteProject hides the project from all queries; its tasks are
// removed outright since nothing can reach them anymore.
func (r *MySQLRepository) SoftDeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE projects SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("soft deleting project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("project not found")
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("deleting project tasks: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UserExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return n > 0, nil
}

const taskColumns = `id, name, project_id, assignee_id, status, due_date`

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Name, &t.ProjectID, &t.AssigneeID, &t.Status, &t.DueDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *MySQLRepository) FindTaskByID(ctx context.Context, projectID, taskID string) (*domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ? AND project_id = ?"

	t, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, projectID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying task by id: %w", err)
	}
	return t, nil
}

func (r *MySQLRepository) ListTasks(ctx context.Context, projectID, status string) ([]domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE project_id = ?"
	args := []any{projectID}

	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY due_date IS NULL, due_date ASC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *MySQLRepository) InsertTask(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	query := `INSERT INTO tasks (id, name, project_id, assignee_id, status, due_date)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.ProjectID, t.AssigneeID, t.Status, t.DueDate); err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdateTask(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET name = ?, assignee_id = ?, status = ?, due_date = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, t.Name, t.AssigneeID, t.Status, t.DueDate, t.ID)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("task not found")
	}
	return nil
}

func (r *MySQLRepository) DeleteTask(ctx context.Context, projectID, taskID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND project_id = ?", taskID, projectID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("task not found")
	}
	return nil
}
