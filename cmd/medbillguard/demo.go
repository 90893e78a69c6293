package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/extract"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the analysis pipeline on a canned sample bill",
	Long: "Runs the full pipeline without any external backend: the built-in " +
		"sample transcript goes through the pattern parser, sanitizer, price " +
		"matcher and classifier.",
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	cat, err := loadCatalog("", logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analyzer, closer, err := buildAnalyzer(ctx, cfg, cat, logger)
	if err != nil {
		return err
	}
	defer closer()

	// empty input selects the canned transcript
	res, err := analyzer.Analyze(ctx, extract.Input{})
	if err != nil {
		return err
	}
	return printResult(res)
}
