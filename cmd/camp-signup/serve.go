package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/camp-signup/internal/config"
	"github.com/aanand-mishra/camp-signup/internal/content"
	"github.com/aanand-mishra/camp-signup/internal/http/handlers/landing"
	"github.com/aanand-mishra/camp-signup/internal/http/handlers/registration"
	"github.com/aanand-mishra/camp-signup/internal/signup"
	"github.com/aanand-mishra/camp-signup/internal/storage"
	"github.com/aanand-mishra/camp-signup/internal/storage/airtable"
	"github.com/aanand-mishra/camp-signup/internal/telemetry"
	"github.com/aanand-mishra/camp-signup/internal/types"
	"github.com/aanand-mishra/camp-signup/internal/utils/response"
	"github.com/aanand-mishra/camp-signup/internal/validation"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page and the registration API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML config file (default $CONFIG_PATH)")
	return cmd
}

func runServe(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting camp-signup", slog.String("env", cfg.Env))

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("flush traces", slog.String("error", err.Error()))
		}
	}()

	v, err := validation.New(cfg.Catalog())
	if err != nil {
		return err
	}

	store, err := airtable.New(cfg.Airtable)
	if err != nil {
		return err
	}
	log.Info("record store ready",
		slog.String("base_url", cfg.Airtable.BaseURL),
		slog.String("table", cfg.Airtable.Table))

	pageCopy, err := content.Load(cfg.ContentPath)
	if err != nil {
		return err
	}

	router, err := newRouter(log, cfg, v, pageCopy, store)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Airtable.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	select {
	case <-done:
		log.Info("shutdown signal received, stopping server...")
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// newRouter builds the route table:
//
//	GET  /              → landing page
//	POST /signup        → landing page sign-up form
//	POST /api/signups   → JSON registration API
//	GET  /healthz       → liveness probe
func newRouter(log *slog.Logger, cfg *config.Config, v *validation.Validator, pageCopy *content.Page, store storage.Storage) (*http.ServeMux, error) {
	svc := signup.New(v, store,
		signup.WithLogger(log),
		signup.WithSuccessHook(followUpHook(log, cfg.Camp.FollowUpURL)),
	)

	page, err := landing.NewPage(pageCopy, v, cfg.Camp.FollowUpURL)
	if err != nil {
		return nil, err
	}

	router := http.NewServeMux()
	router.HandleFunc("GET /{$}", landing.Index(page))
	router.HandleFunc("POST /signup", landing.SignUp(page, svc))
	router.HandleFunc("POST /api/signups", registration.New(svc))
	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.OK())
	})
	return router, nil
}

// followUpHook logs where a new registrant is sent next. Payment itself
// happens outside this service.
func followUpHook(log *slog.Logger, followUpURL string) signup.SuccessHook {
	return func(_ context.Context, reg types.Registration, recordID string) {
		if followUpURL == "" {
			return
		}
		log.Info("follow-up offered",
			slog.String("record_id", recordID),
			slog.String("preferred_week", reg.PreferredWeek),
			slog.String("follow_up_url", followUpURL))
	}
}
