package project

import (
	"database/sql"

	"go.uber.org/zap"

	"smartbiz/internal/notifier"
)

func NewModule(db *sql.DB, publisher notifier.Publisher, logger *zap.Logger) *Controller {
	repo := NewMySQLRepository(db)
	svc := NewService(repo, publisher, logger)
	return NewController(svc, logger)
}
