package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/extract"
	"github.com/medbillguard/medbillguard/internal/ocr"
	"github.com/medbillguard/medbillguard/internal/sanitize"
)

type stubBackend struct {
	ex  extract.Extraction
	err error
}

func (s stubBackend) Extract(context.Context, extract.Input) (extract.Extraction, error) {
	return s.ex, s.err
}

type stubTextBackend struct {
	ex  extract.Extraction
	err error
}

func (s stubTextBackend) ExtractText(context.Context, string) (extract.Extraction, error) {
	return s.ex, s.err
}

type stubOCR struct {
	res ocr.Result
	err error
}

func (s stubOCR) Recognize(context.Context, []byte, string) (ocr.Result, error) {
	return s.res, s.err
}

func goodExtraction(name string) extract.Extraction {
	return extract.Extraction{
		Header: extract.BillHeader{HospitalName: name},
		Items: []extract.ExtractedItem{
			{ItemName: "Paracetamol 500mg Tab", Quantity: 10, UnitPrice: 2.5, TotalBilled: 25},
		},
		Confidence: 0.9,
	}
}

const medicalOCRText = `CITY HOSPITAL pharmacy patient ward
Paracetamol 500mg Tab 25.00`

func newTestOrchestrator(t *testing.T, ocrBackend ocr.Backend, opts ...OrchestratorOption) *Orchestrator {
	t.Helper()
	return NewOrchestrator(ocrBackend, sanitize.New(sanitize.Config{}, nil), nil, opts...)
}

func billInput() extract.Input {
	return extract.Input{Bytes: []byte("fake image"), MimeType: "image/png", Filename: "bill.png"}
}

func TestCascadeTier1Wins(t *testing.T) {
	o := newTestOrchestrator(t,
		stubOCR{},
		WithInvoiceBackend(stubBackend{ex: goodExtraction("from invoice")}),
		WithVisionBackend(stubBackend{ex: goodExtraction("from vision")}),
	)

	res, err := o.Extract(context.Background(), billInput())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != constants.MethodInvoice {
		t.Errorf("method = %q, want tier-1-invoice", res.Method)
	}
	if res.Extraction.Header.HospitalName != "from invoice" {
		t.Error("winning tier's header not adopted")
	}
}

func TestCascadeFallsToVisionOnTier1Error(t *testing.T) {
	o := newTestOrchestrator(t,
		stubOCR{},
		WithInvoiceBackend(stubBackend{err: errors.New("api down")}),
		WithVisionBackend(stubBackend{ex: goodExtraction("from vision")}),
	)

	res, err := o.Extract(context.Background(), billInput())
	if err != nil {
		t.Fatalf("tier-1 error must not abort the cascade: %v", err)
	}
	if res.Method != constants.MethodVision {
		t.Errorf("method = %q, want tier-2-vision", res.Method)
	}
}

func TestCascadeFallsToVisionOnEmptyTier1(t *testing.T) {
	// tier 1 answers, but with only noise the sanitizer removes
	noise := extract.Extraction{Items: []extract.ExtractedItem{
		{ItemName: "Invoice Number: 42", UnitPrice: 100},
	}}
	o := newTestOrchestrator(t,
		stubOCR{},
		WithInvoiceBackend(stubBackend{ex: noise}),
		WithVisionBackend(stubBackend{ex: goodExtraction("from vision")}),
	)

	res, err := o.Extract(context.Background(), billInput())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != constants.MethodVision {
		t.Errorf("method = %q, want tier-2-vision after sanitized-empty tier 1", res.Method)
	}
}

func TestCascadeOCRFailureIsTerminal(t *testing.T) {
	o := newTestOrchestrator(t,
		stubOCR{res: ocr.Result{Success: false, Message: "image too blurry"}},
	)

	_, err := o.Extract(context.Background(), billInput())
	if !common.IsOCRFailed(err) {
		t.Fatalf("err = %v, want an OCR failure", err)
	}
}

func TestCascadeRejectsNonMedicalBill(t *testing.T) {
	o := newTestOrchestrator(t,
		stubOCR{res: ocr.Result{
			Success: true,
			Text:    "SUPERMARKET grocery vegetables fruits bakery 450.00",
		}},
	)

	_, err := o.Extract(context.Background(), billInput())
	if !common.IsNotMedicalBill(err) {
		t.Fatalf("err = %v, want a not-medical-bill rejection", err)
	}
	var nm *common.NotMedicalBillError
	if errors.As(err, &nm) {
		if nm.Confidence <= 0 {
			t.Error("rejection must carry the validator confidence")
		}
		if nm.Message == "" {
			t.Error("rejection must carry the validator reason")
		}
	}
}

func TestCascadeTier3TextWins(t *testing.T) {
	o := newTestOrchestrator(t,
		stubOCR{res: ocr.Result{Success: true, Text: medicalOCRText, Confidence: 0.8}},
		WithTextBackend(stubTextBackend{ex: goodExtraction("from text model")}),
	)

	res, err := o.Extract(context.Background(), billInput())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != constants.MethodText {
		t.Errorf("method = %q, want tier-3-text", res.Method)
	}
	if res.OCRConfidence != 0.8 {
		t.Errorf("ocr confidence = %v, want 0.8 carried through", res.OCRConfidence)
	}
}

func TestCascadeRegexIsTerminalFallback(t *testing.T) {
	o := newTestOrchestrator(t,
		stubOCR{res: ocr.Result{Success: true, Text: medicalOCRText, Confidence: 0.5}},
		WithTextBackend(stubTextBackend{err: errors.New("model unavailable")}),
	)

	res, err := o.Extract(context.Background(), billInput())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != constants.MethodRegex {
		t.Errorf("method = %q, want tier-4-regex", res.Method)
	}
	if len(res.Items) == 0 {
		t.Error("regex tier found no items in parseable text")
	}
}

func TestCascadeRegexMayYieldZeroItems(t *testing.T) {
	o := newTestOrchestrator(t,
		stubOCR{res: ocr.Result{Success: true, Text: "hospital pharmacy patient ward note"}},
	)

	res, err := o.Extract(context.Background(), billInput())
	if err != nil {
		t.Fatalf("terminal fallback must not error: %v", err)
	}
	if res.Method != constants.MethodRegex {
		t.Errorf("method = %q, want tier-4-regex", res.Method)
	}
	if len(res.Items) != 0 {
		t.Errorf("expected zero items, got %d", len(res.Items))
	}
}

func TestCascadeDemoMode(t *testing.T) {
	o := newTestOrchestrator(t, stubOCR{})

	res, err := o.Extract(context.Background(), extract.Input{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != constants.MethodDemoMock {
		t.Errorf("method = %q, want demo-mock", res.Method)
	}
	if len(res.Items) < 10 {
		t.Errorf("demo transcript yielded %d items, want at least 10", len(res.Items))
	}
	if res.Extraction.Header.HospitalName == "" {
		t.Error("demo header missing hospital name")
	}
}
