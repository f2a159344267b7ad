package project

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/pagination"
	"smartbiz/internal/testutil"
)

func seedUser(t *testing.T, db *sql.DB, id, email string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, first_name, last_name, email, password_hash, role)
		VALUES (?, 'Test', 'User', ?, 'x', 'user')`, id, email)
	require.NoError(t, err)
}

func TestService_ProjectLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())
	seedUser(t, db, "user-1", "manager@example.com")

	budget := decimal.RequireFromString("5000.00")
	managerID := "user-1"
	p, err := svc.CreateProject(context.Background(), ProjectInput{
		Name:      "Warehouse revamp",
		Budget:    &budget,
		ManagerID: &managerID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusPlanning, p.Status)
	assert.Equal(t, 0, p.Progress)
	require.NotNil(t, p.Budget)
	assert.Equal(t, "5000.00", p.Budget.StringFixed(2))

	progress := 40
	status := domain.ProjectStatusInProgress
	got, err := svc.UpdateProject(context.Background(), p.ID, ProjectUpdate{
		Status:   &status,
		Progress: &progress,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusInProgress, got.Status)
	assert.Equal(t, 40, got.Progress)
}

func TestService_CreateProject_UnknownManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())

	managerID := "ghost"
	_, err := svc.CreateProject(context.Background(), ProjectInput{
		Name:      "Warehouse revamp",
		ManagerID: &managerID,
	})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestService_SoftDeleteHidesProjectAndTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())

	p, err := svc.CreateProject(context.Background(), ProjectInput{Name: "Warehouse revamp"})
	require.NoError(t, err)

	task, err := svc.CreateTask(context.Background(), p.ID, TaskInput{Name: "Measure shelving"})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusToDo, task.Status)

	require.NoError(t, svc.DeleteProject(context.Background(), p.ID))

	_, err = svc.GetProject(context.Background(), p.ID)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	// The row survives for audit, only hidden from queries.
	var deleted int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM projects WHERE id = ? AND deleted_at IS NOT NULL", p.ID).Scan(&deleted))
	assert.Equal(t, 1, deleted)

	var tasks int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM tasks WHERE project_id = ?", p.ID).Scan(&tasks))
	assert.Equal(t, 0, tasks)

	projects, total, err := svc.ListProjects(context.Background(), Filter{}, pagination.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, projects)
}

func TestService_TaskLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())
	seedUser(t, db, "user-1", "worker@example.com")

	p, err := svc.CreateProject(context.Background(), ProjectInput{Name: "Warehouse revamp"})
	require.NoError(t, err)

	task, err := svc.CreateTask(context.Background(), p.ID, TaskInput{Name: "Measure shelving"})
	require.NoError(t, err)

	assignee := "user-1"
	done := domain.TaskStatusDone
	got, err := svc.UpdateTask(context.Background(), p.ID, task.ID, TaskUpdate{
		AssigneeID: &assignee,
		Status:     &done,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, got.Status)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, "user-1", *got.AssigneeID)

	// Unknown assignee rejected before any write.
	ghost := "ghost"
	_, err = svc.UpdateTask(context.Background(), p.ID, task.ID, TaskUpdate{AssigneeID: &ghost})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	bogus := "Paused"
	_, err = svc.UpdateTask(context.Background(), p.ID, task.ID, TaskUpdate{Status: &bogus})
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)

	require.NoError(t, svc.DeleteTask(context.Background(), p.ID, task.ID))
	_, err = svc.GetTask(context.Background(), p.ID, task.ID)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestService_TasksScopedToProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), notifier.Noop{}, zap.NewNop())

	first, err := svc.CreateProject(context.Background(), ProjectInput{Name: "First"})
	require.NoError(t, err)
	second, err := svc.CreateProject(context.Background(), ProjectInput{Name: "Second"})
	require.NoError(t, err)

	task, err := svc.CreateTask(context.Background(), first.ID, TaskInput{Name: "Only in first"})
	require.NoError(t, err)

	_, err = svc.GetTask(context.Background(), second.ID, task.ID)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	tasks, err := svc.ListTasks(context.Background(), second.ID, "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
