package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"smartbiz/internal/analytics"
	"smartbiz/internal/auth"
	"smartbiz/internal/config"
	"smartbiz/internal/crm"
	"smartbiz/internal/customer"
	"smartbiz/internal/finance"
	"smartbiz/internal/hr"
	"smartbiz/internal/infrastructure/logger"
	"smartbiz/internal/infrastructure/mysql"
	"smartbiz/internal/notifier"
	"smartbiz/internal/order"
	"smartbiz/internal/product"
	"smartbiz/internal/project"
	"smartbiz/internal/server"
	"smartbiz/internal/settings"
	"smartbiz/internal/supplier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	var publisher notifier.Publisher = notifier.Noop{}
	if cfg.Kafka.Enabled {
		publisher = notifier.NewKafkaPublisher(cfg.Kafka.Brokers)
		zapLogger.Info("kafka publisher enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}
	defer publisher.Close()

	authModule := auth.NewModule(db, cfg.JWT.Secret, cfg.JWT.TokenTTL, cfg.JWT.OTPWindow, publisher, zapLogger)
	productModule := product.NewModule(db, publisher, zapLogger)
	customerModule := customer.NewModule(db, publisher, zapLogger)
	orderCtrl := order.NewModule(db, productModule.Repository, customerModule.Repository, publisher, zapLogger)

	router := server.NewRouter(server.Controllers{
		Auth:      authModule,
		Product:   productModule.Controller,
		Customer:  customerModule.Controller,
		Order:     orderCtrl,
		Analytics: analytics.NewModule(db, zapLogger),
		CRM:       crm.NewModule(db, publisher, zapLogger),
		HR:        hr.NewModule(db, zapLogger),
		Finance:   finance.NewModule(db, publisher, zapLogger),
		Supplier:  supplier.NewModule(db, publisher, zapLogger),
		Project:   project.NewModule(db, publisher, zapLogger),
		Settings:  settings.NewModule(db, zapLogger),
	}, cfg.RateLimit, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
