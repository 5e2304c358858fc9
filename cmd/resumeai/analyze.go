package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/pacing"
	"github.com/resumeai/enhancer/internal/wizard"
)

var (
	analyzeResumePath string
	analyzeJobPath    string
	analyzeFull       bool
	analyzeJSON       bool
	analyzeNoDelay    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description, print the result, exit",
	Long:  "One-shot analysis of two text files. Prints the same preview the wizard shows, or the full result with --full.",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeResumePath, "resume", "", "path to the resume text file (- for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeJobPath, "job", "", "path to the job description text file (- for stdin)")
	analyzeCmd.Flags().BoolVar(&analyzeFull, "full", false, "print every strength, weakness and enhancement")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoDelay, "no-delay", false, "skip the analysis delay")
	analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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
	if analyzeResumePath == "-" && analyzeJobPath == "-" {
		return fmt.Errorf("only one of --resume and --job can read stdin")
	}

	resume, err := readInput(analyzeResumePath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	jobDescription, err := readInput(analyzeJobPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	st, err := wizard.New(1, cfg.Analysis.ProgressStep).SetResume(resume)
	if err == nil {
		st, err = st.SetJobDescription(jobDescription)
	}
	if err == nil {
		st, err = st.Submit()
	}
	if err != nil {
		return err
	}

	var clock pacing.Clock = pacing.RealClock{}
	if analyzeNoDelay {
		clock = pacing.InstantClock{}
	}
	runner := pacing.NewRunner(sc.Analyze, clock, cfg.Analysis.Delay, cfg.Analysis.ProgressInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx, st.Resume, st.JobDescription, func() {
		st = st.Tick()
		logger.Debug("analyzing", "progress", st.Progress)
	})
	if err != nil {
		return err
	}

	presenter := wizard.Presenter{RockstarThreshold: cfg.Scoring.RockstarThreshold}
	return printAnalysis(cmd.OutOrStdout(), result, presenter, analyzeFull, analyzeJSON)
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func printAnalysis(w io.Writer, result model.AnalysisResult, presenter wizard.Presenter, full, asJSON bool) error {
	view := presenter.Preview(result)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if full {
			return enc.Encode(result)
		}
		return enc.Encode(view)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Match Score: %d%%\n", view.MatchPercentage)
	fmt.Fprintf(&b, "%s\n", view.Verdict)
	if view.NoJobKeywords {
		b.WriteString("(no known skills found in the job description)\n")
	}

	section := func(title string, preview []wizard.Item, all []string) {
		fmt.Fprintf(&b, "\n%s\n", title)
		if full {
			for _, s := range all {
				fmt.Fprintf(&b, "  • %s\n", s)
			}
			return
		}
		for _, it := range preview {
			if it.Locked {
				fmt.Fprintf(&b, "  🔒 %s\n", it.Text)
			} else {
				fmt.Fprintf(&b, "  • %s\n", it.Text)
			}
		}
	}
	section("Strengths:", view.Strengths, result.Strengths)
	section("Areas to Improve:", view.Weaknesses, result.Weaknesses)
	section("Resume Enhancement Suggestions:", view.Enhancements, result.Enhancements)

	_, err := io.WriteString(w, b.String())
	return err
}
