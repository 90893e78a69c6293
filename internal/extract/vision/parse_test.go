package vision

import (
	"strings"
	"testing"
	"time"

	"github.com/medbillguard/medbillguard/constants"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"code fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{
			"surrounding prose",
			`Sure! Here is the extraction you asked for: {"a":1} Hope that helps.`,
			`{"a":1}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestExtractJSONObjectErrors(t *testing.T) {
	for _, in := range []string{"", "no json here", "} {"} {
		if _, err := ExtractJSONObject(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestDecodeBillHappyPath(t *testing.T) {
	reply := "```json\n" + `{
  "hospital_name": "Apollo Clinic",
  "bill_date": "2024-03-18",
  "bill_number": "AB-123",
  "is_medical_bill": true,
  "confidence": 0.85,
  "items": [
    {"name": "Paracetamol 500mg Tab", "category": "Medicine", "quantity": 10, "unit_price": 2.5, "total": 25},
    {"name": "Complete Blood Count", "category": "Test", "quantity": 1, "unit_price": 350, "total": 350}
  ],
  "grand_total": 375
}` + "\n```"

	ex, isMedical, err := DecodeBill(reply, nil)
	if err != nil {
		t.Fatalf("DecodeBill: %v", err)
	}
	if !isMedical {
		t.Error("is_medical_bill lost in decoding")
	}
	if ex.Header.HospitalName != "Apollo Clinic" {
		t.Errorf("hospital = %q", ex.Header.HospitalName)
	}
	if len(ex.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(ex.Items))
	}
	if ex.Items[0].Category != constants.Medicine || ex.Items[0].Quantity != 10 {
		t.Errorf("first item = %+v", ex.Items[0])
	}
	if ex.Totals.GrandTotal == nil || *ex.Totals.GrandTotal != 375 {
		t.Errorf("grand total = %v, want 375", ex.Totals.GrandTotal)
	}
	if ex.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", ex.Confidence)
	}
}

func TestDecodeBillFillsDefaults(t *testing.T) {
	// minimal, messy reply: no hospital, no date, numeric strings, unknown
	// keys, prose wrapper
	reply := `The bill seems partial but here goes: {
  "items": [{"description": "X-Ray Chest", "price": "400.00", "qty": "1", "note": "blurry"}],
  "total": "400",
  "mystery_field": null
}`

	ex, isMedical, err := DecodeBill(reply, nil)
	if err != nil {
		t.Fatalf("DecodeBill: %v", err)
	}
	if !isMedical {
		t.Error("missing is_medical_bill should default to true")
	}
	if ex.Header.HospitalName != "Unknown Hospital" {
		t.Errorf("hospital = %q, want the Unknown Hospital default", ex.Header.HospitalName)
	}
	if ex.Header.BillDate != time.Now().Format("2006-01-02") {
		t.Errorf("bill date = %q, want today", ex.Header.BillDate)
	}
	if ex.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 default", ex.Confidence)
	}
	if len(ex.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(ex.Items))
	}
	it := ex.Items[0]
	if it.ItemName != "X-Ray Chest" {
		t.Errorf("item name = %q (description synonym not renamed)", it.ItemName)
	}
	if it.UnitPrice != 400 {
		t.Errorf("unit price = %v, want 400 coerced from string", it.UnitPrice)
	}
	if it.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", it.Quantity)
	}
	if it.Category != constants.Test {
		t.Errorf("category = %q, want Test via keyword fallback", it.Category)
	}
	if ex.Totals.GrandTotal == nil || *ex.Totals.GrandTotal != 400 {
		t.Errorf("grand total = %v, want 400 via the total synonym", ex.Totals.GrandTotal)
	}
}

func TestDecodeBillNonMedicalVerdict(t *testing.T) {
	reply := `{"is_medical_bill": false, "items": []}`
	_, isMedical, err := DecodeBill(reply, nil)
	if err != nil {
		t.Fatalf("DecodeBill: %v", err)
	}
	if isMedical {
		t.Error("explicit false verdict lost")
	}
}

func TestDecodeBillPercentConfidence(t *testing.T) {
	reply := `{"is_medical_bill": true, "confidence": 85, "items": []}`
	ex, _, err := DecodeBill(reply, nil)
	if err != nil {
		t.Fatalf("DecodeBill: %v", err)
	}
	if ex.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85 (percent form normalized)", ex.Confidence)
	}
}

func TestNormalizeBillJSONDropsUnknownKeys(t *testing.T) {
	out, dropped, err := NormalizeBillJSON([]byte(`{"hospital":"A","weird":1,"items":[]}`), nil)
	if err != nil {
		t.Fatalf("NormalizeBillJSON: %v", err)
	}
	if strings.Contains(string(out), "weird") {
		t.Errorf("unknown key survived: %s", out)
	}
	if !strings.Contains(string(out), "hospital_name") {
		t.Errorf("synonym not renamed: %s", out)
	}
	if len(dropped) == 0 {
		t.Error("expected drop/rename log entries")
	}
}

func TestBuildBillJSONSchemaValidates(t *testing.T) {
	schema := BuildBillJSONSchema()
	good := []byte(`{"is_medical_bill": true, "items": [{"name": "CBC", "category": "Test", "quantity": 1, "unit_price": 350, "total": 350}]}`)
	if err := ValidateJSONAgainstSchema(schema, good); err != nil {
		t.Errorf("valid document rejected: %v", err)
	}
	bad := []byte(`{"items": "not an array"}`)
	if err := ValidateJSONAgainstSchema(schema, bad); err == nil {
		t.Error("invalid document accepted")
	}
}
