package order

import (
	"database/sql"

	"go.uber.org/zap"

	"smartbiz/internal/notifier"
)

// NewModule assembles the order feature. ProductStore and CustomerStore are
// satisfied by the product and customer repositories respectively.
func NewModule(db *sql.DB, products ProductStore, customers CustomerStore, publisher notifier.Publisher, logger *zap.Logger) *Controller {
	repo := NewMySQLRepository(db)
	svc := NewService(db, repo, products, customers, publisher, logger)
	return NewController(svc, logger)
}
