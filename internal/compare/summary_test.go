package compare

import (
	"math"
	"testing"

	"github.com/medbillguard/medbillguard/constants"
)

func ptr(v float64) *float64 { return &v }

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) {
		t.Errorf("empty summary = %+v, want all zeros", s)
	}
}

func TestSummarizeCountsAndTotals(t *testing.T) {
	results := []ComparisonResult{
		{
			Status: constants.StatusFair, Quantity: 2,
			TotalBilled: 200, GovtCeilingPrice: ptr(116),
		},
		{
			Status: constants.StatusOvercharged, Quantity: 1,
			TotalBilled: 180, GovtCeilingPrice: ptr(116), OverchargeAmount: 64,
		},
		{
			Status: constants.StatusSuspicious, Quantity: 1,
			TotalBilled: 400, GovtCeilingPrice: ptr(116), OverchargeAmount: 284,
		},
		{
			Status: constants.StatusNotFound, Quantity: 1,
			TotalBilled: 90,
		},
	}
	s := Summarize(results)

	if s.FairCount != 1 || s.OverchargedCount != 1 || s.SuspiciousCount != 1 || s.NotFoundCount != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 1 each",
			s.FairCount, s.OverchargedCount, s.SuspiciousCount, s.NotFoundCount)
	}
	if s.TotalBilled != 870 {
		t.Errorf("total billed = %v, want 870", s.TotalBilled)
	}
	// fair prices: 116*2 + 116 + 116 for matched items, plus 90 face value
	// for the unmatched one
	wantFair := 116.0*2 + 116 + 116 + 90
	if math.Abs(s.TotalFairPrice-wantFair) > 1e-9 {
		t.Errorf("total fair price = %v, want %v", s.TotalFairPrice, wantFair)
	}
	if s.TotalOvercharge != 348 {
		t.Errorf("total overcharge = %v, want 348", s.TotalOvercharge)
	}
	wantPct := 348.0 / 870.0 * 100
	if math.Abs(s.SavingsPercent-wantPct) > 1e-9 {
		t.Errorf("savings%% = %v, want %v", s.SavingsPercent, wantPct)
	}
}

func TestSummarizeZeroBilledNoDivideByZero(t *testing.T) {
	s := Summarize([]ComparisonResult{
		{Status: constants.StatusNotFound, Quantity: 1, TotalBilled: 0},
	})
	if s.SavingsPercent != 0 {
		t.Errorf("savings%% = %v, want 0 when nothing was billed", s.SavingsPercent)
	}
}
