package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	auditasync "3tcapital/ms_admision_facturas/internal/adapters/audit/async"
	auditpg "3tcapital/ms_admision_facturas/internal/adapters/audit/postgres"
	fiscalyearhandler "3tcapital/ms_admision_facturas/internal/adapters/http/fiscalyear"
	healthhandler "3tcapital/ms_admision_facturas/internal/adapters/http/health"
	invoicehandler "3tcapital/ms_admision_facturas/internal/adapters/http/invoice"
	supplierhandler "3tcapital/ms_admision_facturas/internal/adapters/http/supplier"
	invoicepg "3tcapital/ms_admision_facturas/internal/adapters/invoice/postgres"
	sequencepg "3tcapital/ms_admision_facturas/internal/adapters/sequence/postgres"
	settingspg "3tcapital/ms_admision_facturas/internal/adapters/settings/postgres"
	supplierpg "3tcapital/ms_admision_facturas/internal/adapters/supplier/postgres"
	appadmission "3tcapital/ms_admision_facturas/internal/application/admission"
	apphealth "3tcapital/ms_admision_facturas/internal/application/health"
	appsequence "3tcapital/ms_admision_facturas/internal/application/sequence"
	appsupplier "3tcapital/ms_admision_facturas/internal/application/supplier"
	"3tcapital/ms_admision_facturas/internal/core/audit"
	"3tcapital/ms_admision_facturas/internal/infrastructure/cache"
	"3tcapital/ms_admision_facturas/internal/infrastructure/config"
	"3tcapital/ms_admision_facturas/internal/infrastructure/database"
	"3tcapital/ms_admision_facturas/internal/infrastructure/http/middleware"
	"3tcapital/ms_admision_facturas/internal/infrastructure/http/server"
	"3tcapital/ms_admision_facturas/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info("Database connection established", "database", cfg.Database.Database)

	if err := database.RunMigrations(ctx, pool, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Repositories
	settingsCache := cache.NewSettingsCache(cfg.Fiscal.SettingsCacheTTL)
	settingsStore := settingspg.NewStore(pool, settingsCache)
	counterRepo := sequencepg.NewRepository(pool)
	supplierRepo := supplierpg.NewRepository(pool)
	invoiceRepo := invoicepg.NewRepository(pool)

	var auditor audit.Recorder
	if cfg.Audit.Enabled {
		asyncAuditor := auditasync.NewRecorder(auditpg.NewRepository(pool), cfg.Audit.Workers, cfg.Audit.QueueSize, log)
		defer asyncAuditor.Close()
		auditor = asyncAuditor
	} else {
		log.Info("Audit trail disabled by configuration")
	}

	// Services
	sequencer := appsequence.NewService(counterRepo, settingsStore, invoiceRepo, auditor, log)
	resolver := appsupplier.NewResolver(supplierRepo, auditor, log)
	supplierAdmin := appsupplier.NewAdmin(supplierRepo, invoiceRepo, log)
	admission := appadmission.NewService(sequencer, resolver, invoiceRepo, log)
	healthService := apphealth.NewService(apphealth.Metadata{
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}, pool)

	if cfg.Fiscal.AutoRolloverOnBoot {
		result, err := sequencer.AutoRollover(ctx)
		if err != nil {
			return fmt.Errorf("auto fiscal year rollover: %w", err)
		}
		if result.Switched {
			log.Info("Fiscal year rolled over at startup", "fiscal_year", result.FiscalYear)
		}
	}

	auth, err := middleware.NewJWTAuthenticator(cfg.Auth, log)
	if err != nil {
		return fmt.Errorf("configure authentication: %w", err)
	}
	defer auth.Close()

	srv, err := server.New(server.Options{
		Config: cfg,
		Logger: log,
		Auth:   auth,
		Handlers: server.Handlers{
			Invoice:    invoicehandler.NewHandler(admission, sequencer, log),
			Supplier:   supplierhandler.NewHandler(resolver, supplierAdmin, log),
			FiscalYear: fiscalyearhandler.NewHandler(sequencer, log),
			Health:     healthhandler.NewHandler(healthService),
		},
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
