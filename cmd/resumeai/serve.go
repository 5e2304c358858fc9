package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/resumeai/enhancer/internal/config"
	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/pacing"
	"github.com/resumeai/enhancer/internal/ratelimit"
	"github.com/resumeai/enhancer/internal/scheduler"
	"github.com/resumeai/enhancer/internal/store"
	"github.com/resumeai/enhancer/internal/web"
	"github.com/resumeai/enhancer/internal/wizard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front-end",
	Long:  "Serve the analysis wizard and informational pages over HTTP; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logJSON)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"keywords", len(cfg.Scoring.Keywords),
		"delay", cfg.Analysis.Delay.String(),
		"free_analyses", cfg.Analysis.FreeAnalyses,
		"notification", cfg.Notification.Type,
	)

	sc, err := cfg.Scorer()
	if err != nil {
		logger.Error("invalid scoring table", "error", err)
		os.Exit(1)
	}

	ledger, closeLedger, err := setupLedger(cfg, logger)
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer closeLedger()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)
	sessions := store.NewSessionStore()
	limiter := ratelimit.NewClientLimiter(cfg.RateLimit.MinDelay)
	runner := pacing.NewRunner(sc.Analyze, pacing.RealClock{}, cfg.Analysis.Delay, cfg.Analysis.ProgressInterval)

	srv := web.New(
		web.Options{
			Addr:             cfg.Server.Addr,
			ReadTimeout:      cfg.Server.ReadTimeout,
			WriteTimeout:     cfg.Server.WriteTimeout,
			ShutdownTimeout:  cfg.Server.ShutdownTimeout,
			CookieName:       cfg.Session.CookieName,
			SecureCookie:     cfg.Session.SecureCookie,
			CookieMaxAge:     cfg.Ledger.Retention,
			FreeAnalyses:     cfg.Analysis.FreeAnalyses,
			ProgressStep:     cfg.Analysis.ProgressStep,
			ProgressInterval: cfg.Analysis.ProgressInterval,
		},
		sessions, ledger, n, limiter, runner,
		wizard.Presenter{RockstarThreshold: cfg.Scoring.RockstarThreshold},
		logger,
	)
	sched := scheduler.NewScheduler(maintenanceTasks(cfg, sessions, ledger, limiter, logger), cfg.Session.CleanupInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gCtx) })
	g.Go(func() error { return sched.Run(gCtx) })
	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		closeLedger()
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}

// maintenanceTasks expires idle sessions, forgets old ledger entries and
// prunes the submission throttle.
func maintenanceTasks(cfg *config.Config, sessions *store.SessionStore, ledger model.UsageLedger, limiter *ratelimit.ClientLimiter, logger *slog.Logger) []scheduler.Task {
	return []scheduler.Task{
		{Name: "sessions", Run: func(context.Context) error {
			if removed := sessions.Cleanup(cfg.Session.TTL); removed > 0 {
				logger.Info("expired idle sessions", "removed", removed, "live", sessions.Len())
			}
			return nil
		}},
		{Name: "ledger", Run: func(context.Context) error {
			return ledger.Cleanup(cfg.Ledger.Retention)
		}},
		{Name: "rate_limit", Run: func(context.Context) error {
			limiter.Prune()
			return nil
		}},
	}
}
