package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/compare"
	"github.com/medbillguard/medbillguard/internal/extract"
	"github.com/medbillguard/medbillguard/internal/match"
)

// AnalysisResult is the outward-facing shape of one full bill analysis.
type AnalysisResult struct {
	AnalysisID    uuid.UUID                  `json:"analysis_id"`
	Header        extract.BillHeader         `json:"header"`
	Summary       compare.Summary            `json:"summary"`
	Items         []compare.ComparisonResult `json:"items"`
	OCRConfidence float32                    `json:"ocr_confidence"`
	ParsingMethod constants.ParseMethod      `json:"parsing_method"`
	AnalyzedAt    time.Time                  `json:"analyzed_at"`
}

// Analyzer chains extraction, price matching, classification and
// aggregation into a single request-scoped call.
type Analyzer struct {
	logger       *slog.Logger
	orchestrator *Orchestrator
	matcher      *match.Matcher
	classifyCfg  compare.Config
}

func NewAnalyzer(o *Orchestrator, m *match.Matcher, classifyCfg compare.Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		logger:       logger,
		orchestrator: o,
		matcher:      m,
		classifyCfg:  classifyCfg,
	}
}

// Analyze runs the full pipeline over one bill. Empty input runs the demo
// transcript. Matching problems degrade individual items to not_found; once
// items are extracted, a partial result always beats no result.
func (a *Analyzer) Analyze(ctx context.Context, in extract.Input) (AnalysisResult, error) {
	aid := uuid.New()
	start := time.Now()

	a.logger.Info("analyze.start",
		"analysis_id", aid,
		"filename", in.Filename,
		"bytes", len(in.Bytes),
	)

	extRes, err := a.orchestrator.Extract(ctx, in)
	if err != nil {
		a.logger.Warn("analyze.extract_failed", "analysis_id", aid, "error", err)
		return AnalysisResult{}, err
	}

	results := make([]compare.ComparisonResult, 0, len(extRes.Items))
	for _, it := range extRes.Items {
		if m, ok := a.matcher.Best(it); ok {
			results = append(results, compare.Classify(it, &m, a.classifyCfg))
		} else {
			results = append(results, compare.Classify(it, nil, a.classifyCfg))
		}
	}
	summary := compare.Summarize(results)

	a.logger.Info("analyze.ok",
		"analysis_id", aid,
		"method", extRes.Method,
		"items", len(results),
		"overcharged", summary.OverchargedCount,
		"total_overcharge", summary.TotalOvercharge,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return AnalysisResult{
		AnalysisID:    aid,
		Header:        extRes.Extraction.Header,
		Summary:       summary,
		Items:         results,
		OCRConfidence: extRes.OCRConfidence,
		ParsingMethod: extRes.Method,
		AnalyzedAt:    time.Now().UTC(),
	}, nil
}
