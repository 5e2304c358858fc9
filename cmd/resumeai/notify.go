package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/notifier"
)

var notifyReason string

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Upsell notification tools",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a sample upsell event",
	Long:  "Pushes one fake upsell event through the configured notifier (log or Slack webhook, with retries).",
	RunE:  runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().StringVar(&notifyReason, "reason", model.ReasonUnlock, "event reason: unlock or repeat_attempt")
	notifyCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	switch notifyReason {
	case model.ReasonUnlock, model.ReasonRepeatAttempt:
	default:
		return fmt.Errorf("unknown reason %q, want %s or %s", notifyReason, model.ReasonUnlock, model.ReasonRepeatAttempt)
	}

	logger := setupLogger(debug, logJSON)
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	if err := notifier.SendTestMessage(ctx, n, notifyReason); err != nil {
		logger.Error("sample upsell event not delivered", "notifier", cfg.Notification.Type, "error", err)
		os.Exit(1)
	}
	logger.Info("sample upsell event delivered", "notifier", cfg.Notification.Type, "reason", notifyReason)
	return nil
}
