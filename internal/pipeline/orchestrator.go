package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/billtype"
	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/extract"
	"github.com/medbillguard/medbillguard/internal/extract/textparse"
	"github.com/medbillguard/medbillguard/internal/ocr"
	"github.com/medbillguard/medbillguard/internal/sanitize"
)

// ExtractionResult is what the cascade hands to the comparison stage.
type ExtractionResult struct {
	Extraction    extract.Extraction
	Items         []extract.ExtractedItem // sanitized
	Method        constants.ParseMethod
	OCRConfidence float32 // 0 when OCR never ran
}

// Orchestrator runs the extraction tiers in strict priority order and
// accepts the first one whose sanitized item list is non-empty.
//
// Tier errors never abort the cascade; they count as zero items. The two
// exceptions are a terminal OCR failure and a bill-type rejection, which
// surface as distinguished errors.
type Orchestrator struct {
	logger      *slog.Logger
	invoice     extract.Backend     // tier 1, nil when not configured
	vision      extract.Backend     // tier 2, nil when not configured
	text        extract.TextBackend // tier 3, nil when not configured
	ocr         ocr.Backend
	sanitizer   *sanitize.Sanitizer
	tierTimeout time.Duration
}

type OrchestratorOption func(*Orchestrator)

func WithInvoiceBackend(b extract.Backend) OrchestratorOption {
	return func(o *Orchestrator) { o.invoice = b }
}

func WithVisionBackend(b extract.Backend) OrchestratorOption {
	return func(o *Orchestrator) { o.vision = b }
}

func WithTextBackend(b extract.TextBackend) OrchestratorOption {
	return func(o *Orchestrator) { o.text = b }
}

// WithTierTimeout bounds each backend call. A tier that overruns is treated
// the same as a tier that returned zero items.
func WithTierTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.tierTimeout = d
		}
	}
}

func NewOrchestrator(ocrBackend ocr.Backend, sanitizer *sanitize.Sanitizer, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		logger:      logger,
		ocr:         ocrBackend,
		sanitizer:   sanitizer,
		tierTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extract runs the cascade over the supplied bill bytes. Empty input means
// demo mode: the canned transcript goes straight to the pattern parser.
func (o *Orchestrator) Extract(ctx context.Context, in extract.Input) (ExtractionResult, error) {
	if len(in.Bytes) == 0 {
		return o.demo(), nil
	}

	// tier 1: structured invoice API
	if o.invoice != nil {
		if res, ok := o.tryBackend(ctx, "tier1.invoice", o.invoice, in); ok {
			res.Method = constants.MethodInvoice
			return res, nil
		}
	}

	// tier 2: vision model on the raw image
	if o.vision != nil {
		if res, ok := o.tryBackend(ctx, "tier2.vision", o.vision, in); ok {
			res.Method = constants.MethodVision
			return res, nil
		}
	}

	// OCR gate: everything below needs text
	ocrRes, err := o.runOCR(ctx, in)
	if err != nil {
		return ExtractionResult{}, err
	}

	verdict := billtype.Validate(ocrRes.Text)
	if !verdict.IsMedicalBill {
		o.logger.Warn("cascade.not_medical_bill",
			"confidence", verdict.Confidence,
			"reason", verdict.Reason,
		)
		return ExtractionResult{}, &common.NotMedicalBillError{
			Message:    verdict.Reason,
			Confidence: verdict.Confidence,
		}
	}

	// tier 3: language model over the OCR transcript
	if o.text != nil {
		if res, ok := o.tryText(ctx, "tier3.text", ocrRes.Text); ok {
			res.Method = constants.MethodText
			res.OCRConfidence = ocrRes.Confidence
			return res, nil
		}
	}

	// tier 4: pattern parser, the terminal fallback. Always yields a
	// result, possibly with zero items.
	ex := textparse.Parse(ocrRes.Text)
	items := o.sanitizer.Filter(ex.Items, ex.GrandTotal())
	o.logger.Info("cascade.tier4.regex",
		"raw_items", len(ex.Items),
		"sanitized_items", len(items),
	)
	return ExtractionResult{
		Extraction:    ex,
		Items:         items,
		Method:        constants.MethodRegex,
		OCRConfidence: ocrRes.Confidence,
	}, nil
}

func (o *Orchestrator) demo() ExtractionResult {
	ex := textparse.Parse(textparse.DemoTranscript)
	items := o.sanitizer.Filter(ex.Items, ex.GrandTotal())
	o.logger.Info("cascade.demo", "items", len(items))
	return ExtractionResult{
		Extraction:    ex,
		Items:         items,
		Method:        constants.MethodDemoMock,
		OCRConfidence: 1,
	}
}

func (o *Orchestrator) runOCR(ctx context.Context, in extract.Input) (ocr.Result, error) {
	tctx, cancel := context.WithTimeout(ctx, o.tierTimeout)
	defer cancel()

	res, err := o.ocr.Recognize(tctx, in.Bytes, in.Filename)
	if err != nil {
		o.logger.Error("cascade.ocr.error", "error", err)
		return ocr.Result{}, &common.OCRFailedError{Message: err.Error()}
	}
	if !res.Success {
		o.logger.Warn("cascade.ocr.failed", "message", res.Message)
		return ocr.Result{}, &common.OCRFailedError{Message: res.Message}
	}
	o.logger.Info("cascade.ocr.ok",
		"text_len", len(res.Text),
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// tryBackend runs one byte-input tier. Any error or timeout counts as zero
// items so the cascade keeps moving.
func (o *Orchestrator) tryBackend(ctx context.Context, tier string, b extract.Backend, in extract.Input) (ExtractionResult, bool) {
	tctx, cancel := context.WithTimeout(ctx, o.tierTimeout)
	defer cancel()

	ex, err := b.Extract(tctx, in)
	if err != nil {
		o.logger.Warn("cascade."+tier+".failed", "error", err)
		return ExtractionResult{}, false
	}
	return o.accept(tier, ex)
}

func (o *Orchestrator) tryText(ctx context.Context, tier string, text string) (ExtractionResult, bool) {
	tctx, cancel := context.WithTimeout(ctx, o.tierTimeout)
	defer cancel()

	ex, err := o.text.ExtractText(tctx, text)
	if err != nil {
		o.logger.Warn("cascade."+tier+".failed", "error", err)
		return ExtractionResult{}, false
	}
	return o.accept(tier, ex)
}

func (o *Orchestrator) accept(tier string, ex extract.Extraction) (ExtractionResult, bool) {
	items := o.sanitizer.Filter(ex.Items, ex.GrandTotal())
	if len(items) == 0 {
		o.logger.Info("cascade."+tier+".empty",
			"raw_items", len(ex.Items),
		)
		return ExtractionResult{}, false
	}
	o.logger.Info("cascade."+tier+".ok",
		"raw_items", len(ex.Items),
		"sanitized_items", len(items),
	)
	return ExtractionResult{Extraction: ex, Items: items}, true
}
