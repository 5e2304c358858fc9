package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/pacing"
	"github.com/resumeai/enhancer/internal/tui"
	"github.com/resumeai/enhancer/internal/wizard"
)

var tryResumeFile string

var tryCmd = &cobra.Command{
	Use:   "try",
	Short: "Run the analysis wizard in the terminal",
	Long:  "Interactive terminal version of the web wizard: paste a resume and a job description, watch the analysis and browse the preview.",
	RunE:  runTry,
}

func init() {
	tryCmd.Flags().StringVar(&tryResumeFile, "resume-file", "", "prefill the resume from a text file")
	rootCmd.AddCommand(tryCmd)
}

func runTry(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, logJSON)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	sc, err := cfg.Scorer()
	if err != nil {
		logger.Error("invalid scoring table", "error", err)
		os.Exit(1)
	}

	var resume string
	if tryResumeFile != "" {
		data, err := os.ReadFile(tryResumeFile)
		if err != nil {
			logger.Error("failed to read resume file", "path", tryResumeFile, "error", err)
			os.Exit(1)
		}
		resume = string(data)
	}

	// Log lines would tear through the full-screen UI, so only a webhook
	// notifier is wired here.
	var n model.Notifier
	if cfg.Notification.Type == "slack" {
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		n = setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, quiet)
	}

	final, err := tui.Run(cmd.Context(), tui.Options{
		FreeAnalyses:     cfg.Analysis.FreeAnalyses,
		ProgressStep:     cfg.Analysis.ProgressStep,
		Delay:            cfg.Analysis.Delay,
		ProgressInterval: cfg.Analysis.ProgressInterval,
		Clock:            pacing.RealClock{},
		Analyze:          sc.Analyze,
		Presenter:        wizard.Presenter{RockstarThreshold: cfg.Scoring.RockstarThreshold},
		Notifier:         n,
		SessionID:        uuid.NewString(),
	}, resume)
	if err != nil {
		logger.Error("terminal wizard failed", "error", err)
		os.Exit(1)
	}

	logger.Debug("wizard closed", "step", final.Step.String(), "analyses", final.Analyses)
	return nil
}
