package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/medbillguard/medbillguard/internal/catalog"
	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/compare"
	"github.com/medbillguard/medbillguard/internal/extract"
	"github.com/medbillguard/medbillguard/internal/extract/invoice"
	"github.com/medbillguard/medbillguard/internal/extract/vision"
	"github.com/medbillguard/medbillguard/internal/match"
	"github.com/medbillguard/medbillguard/internal/ocr"
	"github.com/medbillguard/medbillguard/internal/pipeline"
	"github.com/medbillguard/medbillguard/internal/repository"
	"github.com/medbillguard/medbillguard/internal/sanitize"
)

// buildAnalyzer assembles the full pipeline from configuration. closer is
// non-nil when a backend holds a connection that must be released.
func buildAnalyzer(ctx context.Context, cfg *common.Config, cat *catalog.Catalog, logger *slog.Logger) (*pipeline.Analyzer, func(), error) {
	sanitizer := sanitize.New(sanitize.Config{
		MaxPlausiblePrice: cfg.Match.MaxPlausiblePrice,
	}, logger)

	ocrBackend := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
	}, logger)

	opts := []pipeline.OrchestratorOption{
		pipeline.WithTierTimeout(cfg.Vision.Timeout),
	}
	closer := func() {}

	if cfg.Invoice.APIKey != "" && cfg.Invoice.BaseURL != "" {
		opts = append(opts, pipeline.WithInvoiceBackend(invoice.NewClient(invoice.Config{
			BaseURL: cfg.Invoice.BaseURL,
			APIKey:  cfg.Invoice.APIKey,
			Timeout: cfg.Invoice.Timeout,
		}, logger)))
	}

	if cfg.Vision.APIKey != "" {
		var vb interface {
			extract.Backend
			extract.TextBackend
		}
		switch cfg.Vision.Provider {
		case "gemini":
			gc, err := vision.NewGeminiClient(ctx, cfg.Vision.APIKey, cfg.Vision.Model, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("init gemini backend: %w", err)
			}
			closer = func() { _ = gc.Close() }
			vb = gc
		default:
			vb = vision.NewOpenAIClient(vision.OpenAIConfig{
				APIKey:      cfg.Vision.APIKey,
				BaseURL:     cfg.Vision.BaseURL,
				Model:       cfg.Vision.Model,
				Temperature: cfg.Vision.Temperature,
				Timeout:     cfg.Vision.Timeout,
			}, logger)
		}
		opts = append(opts,
			pipeline.WithVisionBackend(vb),
			pipeline.WithTextBackend(vb),
		)
	}

	orchestrator := pipeline.NewOrchestrator(ocrBackend, sanitizer, logger, opts...)
	matcher := match.New(cat, match.Config{
		AcceptThreshold: cfg.Match.AcceptThreshold,
		HighConfidence:  cfg.Match.HighConfidence,
		CategoryBoost:   cfg.Match.CategoryBoost,
	}, logger)
	analyzer := pipeline.NewAnalyzer(orchestrator, matcher, compare.Config{
		SuspiciousRatio: cfg.Match.SuspiciousRatio,
	}, logger)

	return analyzer, closer, nil
}

// loadCatalog reads the reference price catalog from an XLSX file when one
// is given, otherwise from the embedded seed.
func loadCatalog(path string, logger *slog.Logger) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.LoadSeed(logger)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return catalog.LoadXLSX(f, logger)
}

// loadCatalogFromDB reads the reference price table from Postgres.
func loadCatalogFromDB(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("catalog from database requires DB_URL")
	}
	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	defer repository.Close(pool, logger)
	return catalog.LoadPostgres(ctx, pool, logger)
}
