package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/nurpe/snowops-contracts/internal/config"
	"github.com/nurpe/snowops-contracts/internal/db"
	"github.com/nurpe/snowops-contracts/internal/logger"
	"github.com/nurpe/snowops-contracts/internal/repository"
	"github.com/nurpe/snowops-contracts/internal/service"
)

func main() {
	once := flag.Bool("once", false, "process due renewals once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Environment, cfg.LogLevel).With().Str("component", "renewal-worker").Logger()

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	repo := repository.NewContractRepository(database)
	renewals := service.NewRenewalService(repo, repository.NewAuditRepository(database), nil, cfg.Contracts, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := runPass(ctx, renewals, log); err != nil {
			os.Exit(1)
		}
		return
	}

	log.Info().Dur("interval", cfg.Contracts.RenewalInterval).Msg("renewal worker started")
	ticker := time.NewTicker(cfg.Contracts.RenewalInterval)
	defer ticker.Stop()

	_ = runPass(ctx, renewals, log)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("renewal worker stopped")
			return
		case <-ticker.C:
			_ = runPass(ctx, renewals, log)
		}
	}
}

func runPass(ctx context.Context, renewals *service.RenewalService, log zerolog.Logger) error {
	summary, err := renewals.ProcessPendingRenewals(ctx)
	if err != nil {
		log.Error().Err(err).Msg("renewal pass failed")
		return err
	}
	if summary.Failed > 0 {
		log.Warn().Int("failed", summary.Failed).Msg("some renewals failed")
	}
	return nil
}
