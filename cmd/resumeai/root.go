package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/resumeai/enhancer/internal/config"
	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/notifier"
	"github.com/resumeai/enhancer/internal/retry"
	"github.com/resumeai/enhancer/internal/store"
)

const (
	configEnvVar      = "RESUMEAI_CONFIG"
	defaultConfigPath = "config.yaml"
)

var (
	cfgPath string
	debug   bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "resumeai",
	Short: "ResumeAI Enhancer: see how your resume stacks up against a job",
	Long:  "ResumeAI Enhancer scores a resume against a job description by keyword overlap and serves the result as a web or terminal wizard.",
	// Default to `serve` so that `resumeai` with no args runs the web front-end.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+configEnvVar+" env var or ./"+defaultConfigPath+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > RESUMEAI_CONFIG env var > "./config.yaml".
// Only the implicit default may be missing, in which case built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if env := os.Getenv(configEnvVar); env != "" {
		return config.Load(env)
	}
	return config.LoadOrDefault(defaultConfigPath)
}

// setupLogger writes to stderr so command output on stdout stays clean.
func setupLogger(dbg, asJSON bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		slack := notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
		return retry.NewRetryNotifier(slack, 2, 2*time.Second, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupLedger opens the sqlite ledger when a path is configured and falls
// back to an in-memory one otherwise. The returned func releases it.
func setupLedger(cfg *config.Config, logger *slog.Logger) (model.UsageLedger, func(), error) {
	if cfg.Ledger.Disabled {
		logger.Info("usage ledger disabled, allowance tracked per session only")
		return store.NewNopLedger(), func() {}, nil
	}
	if cfg.Ledger.Path == "" {
		logger.Info("usage ledger kept in memory")
		return store.NewMemoryLedger(), func() {}, nil
	}

	ledger, err := store.NewSQLiteLedger(cfg.Ledger.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open usage ledger: %w", err)
	}
	empty, err := ledger.IsEmpty()
	if err != nil {
		ledger.Close()
		return nil, nil, fmt.Errorf("inspect usage ledger: %w", err)
	}
	logger.Info("usage ledger opened", "path", cfg.Ledger.Path, "empty", empty)

	return ledger, func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("closing usage ledger", "error", err)
		}
	}, nil
}
