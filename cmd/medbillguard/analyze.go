package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/catalog"
	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/export"
	"github.com/medbillguard/medbillguard/internal/extract"
	"github.com/medbillguard/medbillguard/internal/pipeline"
	"github.com/medbillguard/medbillguard/internal/repository"
)

var (
	analyzeFile      string
	analyzeCatalog   string
	analyzeCatalogDB bool
	analyzeXLSX      string
	analyzeSave      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a hospital bill image or PDF for overcharges",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "Path to the bill image or PDF (required)")
	analyzeCmd.Flags().StringVar(&analyzeCatalog, "catalog", "", "Reference price catalog XLSX (default: embedded seed)")
	analyzeCmd.Flags().BoolVar(&analyzeCatalogDB, "catalog-db", false, "Load the catalog from the database (needs DB_URL)")
	analyzeCmd.Flags().StringVar(&analyzeXLSX, "xlsx", "", "Write the full report to this XLSX file")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the analysis to the history database (needs DB_URL)")
	_ = analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ext := constants.NormalizeExt(filepath.Ext(analyzeFile))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return fmt.Errorf("unsupported file type %q", ext)
	}
	data, err := os.ReadFile(analyzeFile)
	if err != nil {
		return fmt.Errorf("read bill file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var cat *catalog.Catalog
	if analyzeCatalogDB {
		cat, err = loadCatalogFromDB(ctx, cfg, logger)
	} else {
		cat, err = loadCatalog(analyzeCatalog, logger)
	}
	if err != nil {
		return err
	}

	analyzer, closer, err := buildAnalyzer(ctx, cfg, cat, logger)
	if err != nil {
		return err
	}
	defer closer()

	res, err := analyzer.Analyze(ctx, extract.Input{
		Bytes:    data,
		MimeType: constants.MimeTypeForExt(ext),
		Filename: filepath.Base(analyzeFile),
	})
	if err != nil {
		return reportAnalysisError(err)
	}

	if analyzeSave {
		if err := saveAnalysis(ctx, cfg, res, logger); err != nil {
			return err
		}
	}
	if analyzeXLSX != "" {
		b, err := export.NewService(logger).AnalysisXLSX(res)
		if err != nil {
			return err
		}
		if err := os.WriteFile(analyzeXLSX, b, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", "path", analyzeXLSX)
	}

	return printResult(res)
}

// reportAnalysisError keeps the two user-actionable outcomes recognizable
// on the command line instead of folding them into a generic failure.
func reportAnalysisError(err error) error {
	switch {
	case common.IsOCRFailed(err):
		return fmt.Errorf("could not read the document; retake the photo with better lighting: %w", err)
	case common.IsNotMedicalBill(err):
		return fmt.Errorf("this does not look like a medical bill: %w", err)
	default:
		return err
	}
}

func saveAnalysis(ctx context.Context, cfg *common.Config, res pipeline.AnalysisResult, logger *slog.Logger) error {
	if cfg.Database.DSN == "" {
		return fmt.Errorf("--save requires DB_URL")
	}
	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer repository.Close(pool, logger)

	repo := repository.NewAnalysisRepository(pool, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.Save(ctx, res)
}

func printResult(res pipeline.AnalysisResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%s (%s): %d items via %s\n",
		res.Header.HospitalName, res.Header.BillDate, len(res.Items), res.ParsingMethod)
	fmt.Fprintf(os.Stderr, "billed %.2f, fair %.2f, overcharge %.2f (%.1f%%)\n",
		res.Summary.TotalBilled, res.Summary.TotalFairPrice,
		res.Summary.TotalOvercharge, res.Summary.SavingsPercent)
	if res.Summary.OverchargedCount+res.Summary.SuspiciousCount > 0 {
		fmt.Fprintf(os.Stderr, "flagged: %d overcharged, %d suspicious\n",
			res.Summary.OverchargedCount, res.Summary.SuspiciousCount)
	}
	return nil
}
