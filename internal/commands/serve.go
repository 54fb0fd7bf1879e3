package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-copilot/common/logging"
	"github.com/telhawk-systems/telhawk-copilot/common/middleware"
	natsclient "github.com/telhawk-systems/telhawk-copilot/common/messaging/nats"
	"github.com/telhawk-systems/telhawk-copilot/internal/correlation"
	"github.com/telhawk-systems/telhawk-copilot/internal/events"
	"github.com/telhawk-systems/telhawk-copilot/internal/handlers"
	"github.com/telhawk-systems/telhawk-copilot/internal/narrative"
	"github.com/telhawk-systems/telhawk-copilot/internal/server"
	"github.com/telhawk-systems/telhawk-copilot/internal/service"
	"github.com/telhawk-systems/telhawk-copilot/internal/threatintel"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg

	logger := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: handlers.ServiceName,
	})
	logging.SetDefault(logger)

	store, storeChecks, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	logs, logChecks, err := buildLogSource(cfg)
	if err != nil {
		return err
	}

	intel := threatintel.NewClient(cfg.ThreatIntel)
	if !intel.IsEnabled() {
		logger.Warn("threat intelligence disabled: no AbuseIPDB key configured")
	}

	prompts, err := narrative.LoadPrompts(cfg.LLM.PromptsFile)
	if err != nil {
		return err
	}
	narrator := narrative.New(cfg.LLM, prompts)
	if !narrator.IsEnabled() {
		logger.Warn("narrative generation disabled: no LLM key configured")
	}

	readyChecks := append(storeChecks, logChecks...)
	svcOpts := []service.Option{service.WithLogger(logger)}
	if cfg.NATS.Enabled {
		natsCfg := natsclient.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		client, err := natsclient.NewClient(natsCfg, logger.Logger)
		if err != nil {
			logger.Warn("NATS unavailable, investigation events disabled", logging.Error(err))
		} else {
			defer func() { _ = client.Drain() }()
			readyChecks = append(readyChecks, handlers.ReadyCheck{Name: "nats", Check: client.Ping})
			svcOpts = append(svcOpts, service.WithNotifier(events.NewPublisher(client, cfg.NATS.Subject)))
			logger.Info("publishing investigation events", "subject", cfg.NATS.Subject)
		}
	}

	engine := correlation.NewEngine(logs, logger)
	svc := service.New(store, engine, intel, narrator, svcOpts...)

	h := handlers.NewHandler(svc, logger, cfg.Web.TemplatesDir).
		WithReadyChecks(readyChecks...)

	router := server.NewRouter(h, server.RouterConfig{
		StaticDir:      cfg.Web.StaticDir,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", middleware.HeaderRequestID},
		},
		Security: middleware.SecurityConfig{HSTS: cfg.Web.HSTS},
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("copilot listening",
			"addr", srv.Addr,
			"store", store.Name(),
			"logs_backend", cfg.Logs.Backend,
			"model", narrator.Model(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
