package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logFormat string

var rootCmd = &cobra.Command{
	Use:   "medbillguard",
	Short: "Hospital bill overcharge analyzer",
	Long: "Extracts line items from hospital bills through a cascade of " +
		"extraction backends and compares each item against government " +
		"reference prices to flag overcharges.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// missing .env is fine; real deployments use the environment
		_ = godotenv.Load()
		slog.SetDefault(newLogger(logFormat))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func newLogger(format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
