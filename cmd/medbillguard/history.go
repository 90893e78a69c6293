package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/repository"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously saved analyses",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of analyses to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		return fmt.Errorf("history requires DB_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer repository.Close(pool, logger)

	repo := repository.NewAnalysisRepository(pool, logger)
	recs, err := repo.List(ctx, historyLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ANALYZED\tHOSPITAL\tMETHOD\tITEMS\tBILLED\tOVERCHARGE")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.2f\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.HospitalName, r.ParsingMethod, r.ItemCount,
			r.TotalBilled, r.TotalOvercharge)
	}
	return w.Flush()
}
