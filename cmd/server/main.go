package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theaivault/backend/internal/api"
	"github.com/theaivault/backend/internal/auth"
	"github.com/theaivault/backend/internal/config"
	"github.com/theaivault/backend/internal/db"
	"github.com/theaivault/backend/internal/ledger"
	"github.com/theaivault/backend/internal/logger"
	"github.com/theaivault/backend/internal/orchestrator"
	"github.com/theaivault/backend/internal/payments"
	"github.com/theaivault/backend/internal/provider"
	"github.com/theaivault/backend/internal/ratelimit"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	database := db.NewBunPostgresClient(cfg.DatabaseURL)
	defer database.Close()

	accountRepo := ledger.NewAccountRepository(database)
	if err := accountRepo.InitializeDatabase(ctx); err != nil {
		log.Error("failed to initialize account tables", "err", err)
		os.Exit(1)
	}
	ledgerService := ledger.NewService(accountRepo)

	paymentRepo := payments.NewPaymentRepository(database)
	if err := paymentRepo.InitializeDatabase(ctx); err != nil {
		log.Error("failed to initialize payment tables", "err", err)
		os.Exit(1)
	}

	gateway := payments.NewCashfreeClient(cfg.CashfreeAppID, cfg.CashfreeSecretKey, cfg.CashfreeBaseURL, log)
	paymentService := payments.NewService(paymentRepo, ledgerService, gateway, cfg.CashfreeWebhookSecret, cfg.AppBaseURL, log)

	veoClient, err := provider.NewVeoClient(ctx, cfg.VeoAPIKey, cfg.VeoModel, log)
	if err != nil {
		log.Error("failed to create veo client", "err", err)
		os.Exit(1)
	}

	videoTiers := []provider.VideoProvider{}
	if veoClient != nil {
		videoTiers = append(videoTiers, veoClient)
	}
	videoTiers = append(videoTiers,
		provider.NewPikaClient(cfg.PikaAPIKey, cfg.PikaBaseURL, log),
		provider.NewHaiperClient(cfg.HaiperAPIKey, cfg.HaiperBaseURL, log),
	)

	imageTiers := []provider.ImageProvider{
		provider.NewOpenAIImageClient(cfg.OpenAIAPIKey, log),
	}

	textClient, err := provider.NewGeminiTextClient(ctx, cfg.GeminiAPIKey, cfg.TextModel, log)
	if err != nil {
		log.Error("failed to create gemini client", "err", err)
		os.Exit(1)
	}

	limiter := ratelimit.NewDailyLimiter(cfg.FreeDailyLimit)
	orch := orchestrator.NewService(ledgerService, limiter, videoTiers, imageTiers, textClient, log)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL)
	if err != nil {
		log.Error("failed to create JWT verifier", "err", err)
		os.Exit(1)
	}
	defer jwtVerifier.Close()
	authMW := auth.NewMiddleware(jwtVerifier)

	genHandler := api.NewGenerationHandler(orch, veoClient)
	accountHandler := api.NewAccountHandler(ledgerService)
	paymentHandler := api.NewPaymentHandler(paymentService, log)
	router := api.SetupRoutes(genHandler, accountHandler, paymentHandler, authMW, log)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "err", err)
		}
	}()

	log.Info("server starting", "addr", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
