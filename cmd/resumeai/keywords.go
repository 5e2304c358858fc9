package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the skill keywords and enhancement templates",
	Long:  "Reads the config and prints the keyword table the scorer matches against.",
	RunE:  runKeywords,
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)

func runKeywords(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	kw := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("#", "Keyword")
	for i, k := range cfg.Scoring.Keywords {
		kw.Row(strconv.Itoa(i+1), k)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, kw.Render())
	fmt.Fprintln(out, "\nEnhancement templates:")
	for i, e := range cfg.Scoring.Enhancements {
		fmt.Fprintf(out, "  %d. %s\n", i+1, e)
	}
	fmt.Fprintf(out, "\nFallback skill: %q\n", cfg.Scoring.FallbackSkill)
	fmt.Fprintf(out, "Total: %d keywords\n", len(cfg.Scoring.Keywords))
	return nil
}
