package compare

import (
	"math"
	"reflect"
	"testing"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/catalog"
	"github.com/medbillguard/medbillguard/internal/extract"
	"github.com/medbillguard/medbillguard/internal/match"
)

func cbcMatch(ceiling float64) *match.Match {
	return &match.Match{
		Entry: catalog.Entry{
			CategoryName:  "Test",
			ItemName:      "Complete Blood Count (CBC)",
			CeilingPrice:  ceiling,
			Source:        "CGHS",
			PublishedDate: "2023-04-01",
		},
		Score: 0.9,
	}
}

func TestClassifyNotFound(t *testing.T) {
	res := Classify(extract.ExtractedItem{
		ItemName: "Unlisted Brand Syrup", Quantity: 1, UnitPrice: 90, TotalBilled: 90,
	}, nil, Config{})

	if res.Status != constants.StatusNotFound {
		t.Fatalf("status = %q, want not_found", res.Status)
	}
	if res.GovtCeilingPrice != nil {
		t.Error("not_found must carry a nil ceiling price")
	}
	if res.OverchargeAmount != 0 {
		t.Errorf("overcharge = %v, want 0", res.OverchargeAmount)
	}
}

func TestClassifyFair(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
	}{
		{"below ceiling", 100},
		{"exactly at ceiling", 116},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(extract.ExtractedItem{
				ItemName: "CBC", Quantity: 2, UnitPrice: tc.unitPrice, TotalBilled: tc.unitPrice * 2,
			}, cbcMatch(116), Config{})

			if res.Status != constants.StatusFair {
				t.Fatalf("status = %q, want fair", res.Status)
			}
			if res.OverchargeAmount != 0 {
				t.Errorf("fair item overcharge = %v, want forced 0", res.OverchargeAmount)
			}
			if res.GovtCeilingPrice == nil || *res.GovtCeilingPrice != 116 {
				t.Error("ceiling price not carried over")
			}
			if res.PriceSource != "CGHS" {
				t.Errorf("price source = %q, want CGHS", res.PriceSource)
			}
		})
	}
}

func TestClassifyOvercharged(t *testing.T) {
	// 180 vs ceiling 116: 64 over per unit, ratio 0.55 stays below 1.0
	res := Classify(extract.ExtractedItem{
		ItemName: "CBC", Quantity: 3, UnitPrice: 180, TotalBilled: 540,
	}, cbcMatch(116), Config{})

	if res.Status != constants.StatusOvercharged {
		t.Fatalf("status = %q, want overcharged", res.Status)
	}
	want := (180.0 - 116.0) * 3
	if math.Abs(res.OverchargeAmount-want) > 1e-9 {
		t.Errorf("overcharge = %v, want %v", res.OverchargeAmount, want)
	}
}

func TestClassifySuspicious(t *testing.T) {
	// 400 vs ceiling 116: more than double the ceiling
	res := Classify(extract.ExtractedItem{
		ItemName: "CBC", Quantity: 1, UnitPrice: 400, TotalBilled: 400,
	}, cbcMatch(116), Config{})

	if res.Status != constants.StatusSuspicious {
		t.Fatalf("status = %q, want suspicious", res.Status)
	}
	if res.OverchargeAmount != 400-116 {
		t.Errorf("overcharge = %v, want %v", res.OverchargeAmount, 400-116)
	}
}

func TestClassifySuspiciousRatioConfigurable(t *testing.T) {
	// with a 3x ratio the same item is merely overcharged
	res := Classify(extract.ExtractedItem{
		ItemName: "CBC", Quantity: 1, UnitPrice: 400, TotalBilled: 400,
	}, cbcMatch(116), Config{SuspiciousRatio: 3})

	if res.Status != constants.StatusOvercharged {
		t.Fatalf("status = %q, want overcharged with relaxed ratio", res.Status)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	it := extract.ExtractedItem{ItemName: "CBC", Quantity: 2, UnitPrice: 180, TotalBilled: 360}
	m := cbcMatch(116)
	a := Classify(it, m, Config{})
	b := Classify(it, m, Config{})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("classification not deterministic:\n%+v\n%+v", a, b)
	}
}
