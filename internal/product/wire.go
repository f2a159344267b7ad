package product

import (
	"database/sql"

	"go.uber.org/zap"

	"smartbiz/internal/notifier"
)

type Module struct {
	Controller *Controller
	Repository *MySQLRepository
}

func NewModule(db *sql.DB, publisher notifier.Publisher, logger *zap.Logger) *Module {
	repo := NewMySQLRepository(db)
	svc := NewService(repo, publisher, logger)
	return &Module{
		Controller: NewController(svc, logger),
		Repository: repo,
	}
}
