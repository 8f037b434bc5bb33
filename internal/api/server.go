package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentsform/studymate-api/internal/apimetrics"
	"github.com/agentsform/studymate-api/internal/billing"
	"github.com/agentsform/studymate-api/internal/email"
	"github.com/agentsform/studymate-api/internal/logging"
	"github.com/agentsform/studymate-api/internal/store"
	"github.com/rs/zerolog/log"
)

const metricsUpdateInterval = 60 * time.Second

// Run starts the API server with graceful shutdown.
func Run(ctx context.Context, version string) error {
	logging.Init(logging.Config{
		Format:    "auto",
		Level:     "info",
		Component: "api",
	})

	log.Info().Str("version", version).Msg("Starting StudyMate API")

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// Initialize email sender
	var emailSender email.Sender
	if cfg.SendGridAPIKey != "" {
		emailSender = email.NewSendGridSender(cfg.SendGridAPIKey)
		log.Info().Msg("Email sender configured (SendGrid)")
	} else {
		emailSender = email.NewLogSender(log.Logger)
		log.Info().Msg("Email sender: log-only (set SENDGRID_API_KEY to enable)")
	}

	billingCfg := cfg.BillingConfig()
	reconciler := billing.NewReconciler(st, billingCfg.Prices, cfg.FrontendURL, emailSender, cfg.EmailFrom)

	mux := http.NewServeMux()
	deps := &Deps{
		Config:     cfg,
		Store:      st,
		Reconciler: reconciler,
		Version:    version,
	}
	RegisterRoutes(mux, deps)

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Create derived context for background goroutines
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start metrics updater
	go runUserTierMetrics(ctx, st)

	// Start server in background
	go func() {
		log.Info().Str("addr", addr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Server failed")
		}
	}()

	// Signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		log.Info().Msg("Context cancelled, shutting down...")
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	cancel()
	log.Info().Msg("API stopped")
	return nil
}

// runUserTierMetrics keeps the users-by-tier gauge in sync with the store.
func runUserTierMetrics(ctx context.Context, st *store.Store) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	update := func() {
		byTier, err := st.UsersByTier()
		if err != nil {
			log.Warn().Err(err).Msg("Metrics: users-by-tier query failed")
			return
		}
		for tier, n := range byTier {
			apimetrics.UsersByTier.WithLabelValues(string(tier)).Set(float64(n))
		}
	}

	update()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}
