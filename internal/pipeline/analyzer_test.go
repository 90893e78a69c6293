package pipeline

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/catalog"
	"github.com/medbillguard/medbillguard/internal/compare"
	"github.com/medbillguard/medbillguard/internal/extract"
	"github.com/medbillguard/medbillguard/internal/match"
	"github.com/medbillguard/medbillguard/internal/sanitize"
)

func TestAnalyzeEndToEnd(t *testing.T) {
	cat, err := catalog.New([]catalog.Entry{
		{CategoryName: "Medicine", ItemName: "Paracetamol 500mg Tab", CeilingPrice: 2.09, Source: "NPPA"},
	}, nil)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	orch := NewOrchestrator(stubOCR{}, sanitize.New(sanitize.Config{}, nil), nil,
		WithInvoiceBackend(stubBackend{ex: extract.Extraction{
			Header: extract.BillHeader{HospitalName: "Test Hospital", BillDate: "2024-03-18"},
			Items: []extract.ExtractedItem{
				{ItemName: "Paracetamol 500mg Tab", Quantity: 10, UnitPrice: 2.5, TotalBilled: 25},
				{ItemName: "Unlisted Herbal Supplement", Quantity: 1, UnitPrice: 90, TotalBilled: 90},
			},
		}}),
	)
	analyzer := NewAnalyzer(orch, match.New(cat, match.Config{}, nil), compare.Config{}, nil)

	res, err := analyzer.Analyze(context.Background(), billInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.ParsingMethod != constants.MethodInvoice {
		t.Errorf("parsing method = %q, want tier-1-invoice", res.ParsingMethod)
	}
	if res.Header.HospitalName != "Test Hospital" {
		t.Errorf("header hospital = %q", res.Header.HospitalName)
	}
	if len(res.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(res.Items))
	}

	var overcharged, notFound int
	for _, it := range res.Items {
		switch it.Status {
		case constants.StatusOvercharged:
			overcharged++
		case constants.StatusNotFound:
			notFound++
		}
	}
	if overcharged != 1 || notFound != 1 {
		t.Errorf("statuses = %d overcharged / %d not_found, want 1 / 1", overcharged, notFound)
	}
	if res.Summary.TotalBilled != 115 {
		t.Errorf("total billed = %v, want 115", res.Summary.TotalBilled)
	}
	if res.AnalysisID == uuid.Nil {
		t.Error("analysis id not assigned")
	}
}
