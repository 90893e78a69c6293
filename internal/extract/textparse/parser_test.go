package textparse

import (
	"strings"
	"testing"

	"github.com/medbillguard/medbillguard/constants"
)

func TestParseDemoTranscript(t *testing.T) {
	res := Parse(DemoTranscript)

	if res.Header.HospitalName != "CITY GENERAL HOSPITAL" {
		t.Errorf("hospital = %q, want CITY GENERAL HOSPITAL", res.Header.HospitalName)
	}
	if res.Header.BillNumber != "IP-2024-00817" {
		t.Errorf("bill number = %q, want IP-2024-00817", res.Header.BillNumber)
	}
	if res.Header.BillDate != "2024-03-18" {
		t.Errorf("bill date = %q, want 2024-03-18 (last date token wins)", res.Header.BillDate)
	}
	if res.Header.GSTIN != "29ABCDE1234F1Z5" {
		t.Errorf("gstin = %q", res.Header.GSTIN)
	}

	if len(res.Items) < 10 {
		t.Fatalf("parsed %d items, want at least 10", len(res.Items))
	}
	if res.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6 with items present", res.Confidence)
	}

	if res.Totals.GrandTotal == nil || *res.Totals.GrandTotal != 24286 {
		t.Errorf("grand total = %v, want 24286", res.Totals.GrandTotal)
	}
	if res.Totals.Subtotal == nil || *res.Totals.Subtotal != 24536 {
		t.Errorf("subtotal = %v, want 24536", res.Totals.Subtotal)
	}
	if res.Totals.Discount == nil || *res.Totals.Discount != 500 {
		t.Errorf("discount = %v, want 500", res.Totals.Discount)
	}
	if res.Totals.CGST == nil || *res.Totals.CGST != 125 {
		t.Errorf("cgst = %v, want 125", res.Totals.CGST)
	}

	// section cursor: pharmacy items are medicines, lab items are tests
	byName := map[string]int{}
	for i, it := range res.Items {
		byName[it.ItemName] = i
	}
	if i, ok := byName["Complete Blood Count (CBC)"]; !ok {
		t.Error("CBC line not extracted")
	} else if res.Items[i].Category != constants.Test {
		t.Errorf("CBC category = %q, want Test", res.Items[i].Category)
	}

	for _, it := range res.Items {
		if strings.Contains(strings.ToLower(it.ItemName), "total") {
			t.Errorf("totals row leaked into items: %q", it.ItemName)
		}
		if it.Quantity < 1 {
			t.Errorf("item %q has quantity %d", it.ItemName, it.Quantity)
		}
	}
}

func TestParseQuantityDisambiguation(t *testing.T) {
	text := `PHARMACY
1. Paracetamol 500mg Tab Qty:10 2.50 25.00`

	res := Parse(text)
	if len(res.Items) != 1 {
		t.Fatalf("parsed %d items, want 1", len(res.Items))
	}
	it := res.Items[0]
	if it.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", it.Quantity)
	}
	if it.UnitPrice != 2.5 {
		t.Errorf("unitPrice = %v, want 2.5", it.UnitPrice)
	}
	if it.TotalBilled != 25 {
		t.Errorf("totalBilled = %v, want 25", it.TotalBilled)
	}
	if it.Category != constants.Medicine {
		t.Errorf("category = %q, want Medicine from the section cursor", it.Category)
	}
	// the dosage figure must not be mistaken for money or stripped oddly
	if !strings.Contains(it.ItemName, "500mg") {
		t.Errorf("item name %q lost its dosage", it.ItemName)
	}
}

func TestParseTwoNumberLine(t *testing.T) {
	res := Parse("X-Ray Chest 2 400.00")
	if len(res.Items) != 1 {
		t.Fatalf("parsed %d items, want 1", len(res.Items))
	}
	it := res.Items[0]
	// two tokens with the larger one last: (unit price, total)
	if it.UnitPrice != 2 || it.TotalBilled != 400 {
		t.Errorf("got unit %v total %v, want 2 and 400", it.UnitPrice, it.TotalBilled)
	}
}

func TestParseSingleAmountLine(t *testing.T) {
	res := Parse("Lipid Profile 850.00")
	if len(res.Items) != 1 {
		t.Fatalf("parsed %d items, want 1", len(res.Items))
	}
	it := res.Items[0]
	if it.UnitPrice != 850 || it.TotalBilled != 850 || it.Quantity != 1 {
		t.Errorf("got unit %v total %v qty %d, want 850/850/1", it.UnitPrice, it.TotalBilled, it.Quantity)
	}
	if it.Category != constants.Test {
		t.Errorf("category = %q, want Test via keyword classification", it.Category)
	}
}

func TestParseSkipsMetadataLines(t *testing.T) {
	text := `Phone: 080-22334455
Patient Name: Ramesh Kumar 46
Grand Total: 24286.00
CGST @ 9%: 125.00
Thank you, get well soon 100.00`

	res := Parse(text)
	if len(res.Items) != 0 {
		t.Errorf("metadata lines produced items: %#v", res.Items)
	}
}

func TestParseNeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"|||| ____ ~~~~",
		"£$%^&* 12.34",
		strings.Repeat("very long line ", 1000),
		"12/34/5678 99/99/99",
		"Qty: x Rate: y Amount: z",
	}
	for _, in := range inputs {
		res := Parse(in)
		if res.Confidence != 0.2 && res.Confidence != 0.6 {
			t.Errorf("confidence %v outside expected values for %q", res.Confidence, in)
		}
	}
}

func TestNormalizeDateSwapsWhenMonthImpossible(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"", "18", "03", "2024"}, "2024-03-18"},
		{[]string{"", "03", "18", "2024"}, "2024-03-18"}, // month 18 impossible, swap
		{[]string{"", "05", "06", "24"}, "2024-06-05"},   // 2-digit year
		{[]string{"", "99", "99", "99"}, ""},             // unrecoverable
	}
	for _, tc := range tests {
		if got := normalizeDate(tc.in); got != tc.want {
			t.Errorf("normalizeDate(%v) = %q, want %q", tc.in[1:], got, tc.want)
		}
	}
}
