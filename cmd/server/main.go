package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/employee-registry/internal/adapters/http/api"
	"github.com/ogurasousui/employee-registry/internal/adapters/http/web"
	"github.com/ogurasousui/employee-registry/internal/adapters/repository/postgres"
	"github.com/ogurasousui/employee-registry/internal/core/employee"
	"github.com/ogurasousui/employee-registry/internal/platform/config"
	"github.com/ogurasousui/employee-registry/internal/platform/db/migrations"
	pg "github.com/ogurasousui/employee-registry/internal/platform/db/postgres"
	"github.com/ogurasousui/employee-registry/internal/platform/logging"
	"github.com/ogurasousui/employee-registry/internal/platform/server"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal().Err(err).Msg("failed to load .env")
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build logger")
	}
	log.Logger = logger

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(cfg.Database.DSN()); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
		logger.Info().Msg("schema is up to date")
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database pool")
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	employeeSvc := employee.NewService(employeeRepo, txManager)

	pages, err := web.NewHandler(employeeSvc, logger, cfg.Server.StaticDir != "")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize pages")
	}

	httpAPI := api.NewService(api.ServiceDeps{
		Employees:   employeeSvc,
		Pinger:      dbPool,
		Pages:       pages,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		StaticDir:   cfg.Server.StaticDir,
	})

	srv := server.New(cfg.Server, httpAPI.Handler(), logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}

	logger.Info().Msg("server stopped")
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}
