package auth

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"smartbiz/internal/notifier"
)

type Module struct {
	Controller *Controller
	Middleware *Middleware
}

func NewModule(db *sql.DB, secret string, tokenTTL, otpWindow time.Duration, publisher notifier.Publisher, logger *zap.Logger) *Module {
	issuer := NewTokenIssuer(secret, tokenTTL)
	middleware := NewMiddleware(issuer, logger)
	repo := NewMySQLRepository(db)
	svc := NewService(repo, issuer, otpWindow, publisher, logger)
	return &Module{
		Controller: NewController(svc, middleware, logger),
		Middleware: middleware,
	}
}
