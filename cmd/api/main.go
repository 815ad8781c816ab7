package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"backoffice/internal/config"
	"backoffice/internal/db"
	"backoffice/internal/httpserver"
	"backoffice/internal/logger"
	"backoffice/internal/metrics"
	addressrepo "backoffice/internal/repository/address"
	customerrepo "backoffice/internal/repository/customer"
	organizationrepo "backoffice/internal/repository/organization"
	addresssvc "backoffice/internal/service/address"
	customersvc "backoffice/internal/service/customer"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log = log.Named("api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		log.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	tx := db.NewTransactor(dbpool, log)
	organizationRepo := organizationrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool, log)
	addressRepo := addressrepo.NewPostgres(dbpool, tx, log)
	customerService := customersvc.New(customerRepo, addressRepo, tx, log)
	addressService := addresssvc.New(addressRepo, customerRepo, tx, log)

	m := metrics.New()
	m.RegisterPool(dbpool)

	srv, err := httpserver.New(cfg.HTTPAddr, log, dbpool, httpserver.Deps{
		Organizations: organizationRepo,
		Customers:     customerService,
		Addresses:     addressService,
		Metrics:       m,
	}, cfg.CORSAllowedOrigins)
	if err != nil {
		log.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("server stopped")
	}
}
