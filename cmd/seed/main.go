package main

import (
	"context"
	"fmt"
	"os"

	"backoffice/internal/config"
	"backoffice/internal/db"
	"backoffice/internal/logger"
	addressrepo "backoffice/internal/repository/address"
	customerrepo "backoffice/internal/repository/customer"
	organizationrepo "backoffice/internal/repository/organization"
	"backoffice/internal/seed"
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
	log = log.Named("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	tx := db.NewTransactor(pool, log)
	customerRepo := customerrepo.NewPostgres(pool, log)
	addressRepo := addressrepo.NewPostgres(pool, tx, log)

	err = seed.Apply(ctx,
		organizationrepo.NewPostgres(pool),
		customersvc.New(customerRepo, addressRepo, tx, log),
		addresssvc.New(addressRepo, customerRepo, tx, log),
		tx,
		log,
	)
	if err != nil {
		log.Fatal("seed apply", zap.Error(err))
	}

	log.Info("seed applied", zap.String("organization", seed.OrganizationKey))
}
