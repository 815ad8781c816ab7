package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/db"
	"backoffice/internal/domain"
	"backoffice/internal/importer"
	"backoffice/internal/logger"
	addressrepo "backoffice/internal/repository/address"
	customerrepo "backoffice/internal/repository/customer"
	organizationrepo "backoffice/internal/repository/organization"
	addresssvc "backoffice/internal/service/address"
	customersvc "backoffice/internal/service/customer"
	"go.uber.org/zap"
)

func main() {
	var (
		filePath string
		orgKey   string
	)
	flag.StringVar(&filePath, "file", "", "Path to customer CSV export")
	flag.StringVar(&orgKey, "org", "", "Organization key to import into")
	flag.Parse()

	if filePath == "" || orgKey == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	orgRepo := organizationrepo.NewPostgres(pool)
	org, err := orgRepo.GetByKey(ctx, orgKey)
	if errors.Is(err, domain.ErrNotFound) {
		org, err = orgRepo.Create(ctx, domain.Organization{Key: orgKey, Name: orgKey})
	}
	if err != nil {
		log.Fatal("ensure organization", zap.String("organization", orgKey), zap.Error(err))
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	tx := db.NewTransactor(pool, log)
	customerRepo := customerrepo.NewPostgres(pool, log)
	addressRepo := addressrepo.NewPostgres(pool, tx, log)
	imp := importer.NewCSVImporter(f,
		customersvc.New(customerRepo, addressRepo, tx, log),
		addresssvc.New(addressRepo, customerRepo, tx, log),
		tx,
		org.ID,
		log,
	)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("Imported into organization %s in %s: %d customers created, %d already present, %d addresses created\n",
		orgKey, time.Since(start).Truncate(time.Millisecond), res.CustomersCreated, res.CustomersExisting, res.AddressesCreated)
}
