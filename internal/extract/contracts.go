package extract

import (
	"context"

	"github.com/medbillguard/medbillguard/constants"
)

// ExtractedItem is one candidate billable line produced by an extraction
// backend. Items are ephemeral: they are discarded when the sanitizer
// rejects them or when the owning tier is abandoned for a later one.
type ExtractedItem struct {
	RawText   string             `json:"raw_text,omitempty"` // original source line, for audit
	ItemName  string             `json:"item_name"`
	Category  constants.Category `json:"category"`
	Quantity  int                `json:"quantity"` // defaults to 1 when unstated
	Unit      string             `json:"unit,omitempty"`
	MRP       float64            `json:"mrp,omitempty"`
	Discount  float64            `json:"discount,omitempty"`
	UnitPrice float64            `json:"unit_price"`
	// TotalBilled ~ UnitPrice*Quantity is a soft expectation, not enforced;
	// backends may supply only one of the two.
	TotalBilled float64 `json:"total_billed"`
}

// BillHeader carries the document-level fields adopted from whichever tier
// won the cascade. Absent fields stay zero-valued.
type BillHeader struct {
	HospitalName string `json:"hospital_name"`
	BillNumber   string `json:"bill_number,omitempty"`
	BillDate     string `json:"bill_date,omitempty"` // YYYY-MM-DD
	GSTIN        string `json:"gstin,omitempty"`
	PatientName  string `json:"patient_name,omitempty"`
}

// Totals is the label-anchored tax breakdown from the bill footer.
// Nil means the row was not present in the document.
type Totals struct {
	Subtotal   *float64 `json:"subtotal,omitempty"`
	Discount   *float64 `json:"discount,omitempty"`
	Tax        *float64 `json:"tax,omitempty"` // undifferentiated tax, when the backend reports one figure
	CGST       *float64 `json:"cgst,omitempty"`
	SGST       *float64 `json:"sgst,omitempty"`
	GrandTotal *float64 `json:"grand_total,omitempty"`
}

// Extraction is the common output shape every tier converges on.
type Extraction struct {
	Header     BillHeader      `json:"header"`
	Totals     Totals          `json:"totals"`
	Items      []ExtractedItem `json:"items"`
	Confidence float32         `json:"confidence"` // 0..1, backend self-reported
}

// GrandTotal returns the footer grand total if present, else the item sum.
// The sanitizer needs it to recognize total rows misread as items.
func (e Extraction) GrandTotal() float64 {
	if e.Totals.GrandTotal != nil {
		return *e.Totals.GrandTotal
	}
	var sum float64
	for _, it := range e.Items {
		sum += it.TotalBilled
	}
	return sum
}

// Input is the raw bill handed to a backend.
type Input struct {
	Bytes    []byte
	MimeType string
	Filename string
}

// Backend is one extraction strategy over raw bytes. Implementations are
// untrusted: whatever they return still passes through the sanitizer, and
// any error they return is treated by the orchestrator as "this tier
// produced zero items", never as a pipeline failure. The orchestrator, not
// the backend, tags which tier a result came from.
type Backend interface {
	Extract(ctx context.Context, in Input) (Extraction, error)
}

// TextBackend parses already-OCR'd text instead of raw bytes (tiers 3-4).
type TextBackend interface {
	ExtractText(ctx context.Context, ocrText string) (Extraction, error)
}
