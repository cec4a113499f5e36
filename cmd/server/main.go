package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/findash/internal/clients/yahoo"
	"github.com/aristath/findash/internal/config"
	"github.com/aristath/findash/internal/database"
	"github.com/aristath/findash/internal/modules/charts"
	"github.com/aristath/findash/internal/modules/ledger"
	"github.com/aristath/findash/internal/modules/optimization"
	"github.com/aristath/findash/internal/modules/universe"
	"github.com/aristath/findash/internal/scheduler"
	"github.com/aristath/findash/internal/server"
	"github.com/aristath/findash/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Int("port", cfg.Port).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting findash")

	// Ledger database.
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer db.Close()

	ledgerRepo := ledger.NewRepository(db.Conn(), log)
	if err := ledgerRepo.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger schema")
	}

	// Universe and price history.
	univ, err := universe.LoadUniverse(cfg.UniversePath, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.UniversePath).Msg("Failed to load universe")
	}

	history, err := universe.OpenHistoryDB(cfg.HistoryDBPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer history.Close()

	yahooClient := yahoo.NewClient(log)
	loader := universe.NewPriceLoader(univ, history, yahooClient, log)

	// Modules.
	ledgerHandler := ledger.NewHandler(ledgerRepo, log)

	chartsService := charts.NewService(log)
	chartsHandler := charts.NewHandler(chartsService, loader, log)

	analysisService := optimization.NewService(ledgerRepo, loader, cfg.PortfolioBudget, cfg.RiskFreeRate, log)
	analysisHandler := optimization.NewHandler(analysisService, log)

	// Background jobs: refresh cached history nightly after US close.
	sched := scheduler.New(log)
	syncJob := scheduler.NewPriceSyncJob(univ, loader, log)
	if err := sched.AddJob("0 30 23 * * *", syncJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register price sync job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		DevMode:  cfg.DevMode,
		Universe: univ,
		Ledger:   ledgerHandler,
		Charts:   chartsHandler,
		Analysis: analysisHandler,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("findash stopped")
}
