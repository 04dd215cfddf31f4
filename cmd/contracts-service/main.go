package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/nurpe/snowops-contracts/internal/auth"
	"github.com/nurpe/snowops-contracts/internal/config"
	"github.com/nurpe/snowops-contracts/internal/db"
	"github.com/nurpe/snowops-contracts/internal/excel"
	httphandler "github.com/nurpe/snowops-contracts/internal/http"
	"github.com/nurpe/snowops-contracts/internal/http/middleware"
	"github.com/nurpe/snowops-contracts/internal/logger"
	"github.com/nurpe/snowops-contracts/internal/pdf"
	"github.com/nurpe/snowops-contracts/internal/repository"
	"github.com/nurpe/snowops-contracts/internal/service"
	"github.com/nurpe/snowops-contracts/internal/signature"
	"github.com/nurpe/snowops-contracts/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Environment, cfg.LogLevel)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	auditRepo := repository.NewAuditRepository(database)

	var documents service.DocumentStore
	if cfg.Storage.Enabled() {
		store, err := storage.NewMinioStore(cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init document storage")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = store.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("failed to prepare document bucket")
		}
		documents = store
	} else {
		log.Warn().Msg("MINIO_ENDPOINT not set, contract documents will not be stored")
	}

	providers := signatureRegistry(cfg.Signature)
	log.Info().Strs("providers", providers.Names()).Msg("signature providers registered")

	contractService := service.NewContractService(contractRepo, auditRepo, nil, cfg.Contracts, log)
	signatureService := service.NewSignatureService(contractRepo, providers, pdf.NewGenerator(), documents, auditRepo, nil, log)
	renewalService := service.NewRenewalService(contractRepo, auditRepo, nil, cfg.Contracts, log)
	analyticsService := service.NewAnalyticsService(contractRepo, excel.NewGenerator(), nil, cfg.Contracts, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, signatureService, renewalService, analyticsService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.CORSAllowedOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting contracts service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("contracts service stopped")
}

func signatureRegistry(cfg config.SignatureConfig) *signature.Registry {
	providers := []signature.Provider{
		signature.NewClicksign(cfg.Clicksign.APIURL, cfg.Clicksign.APIKey, cfg.Clicksign.WebhookSecret, cfg.RequestTimeout),
		signature.NewDocusign(cfg.Docusign.APIURL, cfg.Docusign.APIKey, cfg.Docusign.WebhookSecret, cfg.RequestTimeout),
	}
	defaultName := cfg.DefaultProvider
	if cfg.Sandbox {
		providers = append(providers, signature.NewSandbox(cfg.SandboxSecret))
		defaultName = signature.SandboxName
	}
	return signature.NewRegistry(defaultName, providers...)
}
