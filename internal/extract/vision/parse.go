package vision

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/extract"
)

// billDoc is the normalized shape we want from the model.
type billDoc struct {
	HospitalName  string     `json:"hospital_name"`
	BillDate      string     `json:"bill_date"`
	BillNumber    string     `json:"bill_number"`
	IsMedicalBill *bool      `json:"is_medical_bill"`
	Confidence    float64    `json:"confidence"`
	Items         []billItem `json:"items"`
	Subtotal      *float64   `json:"subtotal"`
	Discount      *float64   `json:"discount"`
	Tax           *float64   `json:"tax"`
	CGST          *float64   `json:"cgst"`
	SGST          *float64   `json:"sgst"`
	GrandTotal    *float64   `json:"grand_total"`
}

type billItem struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	Unit      string  `json:"unit"`
	MRP       float64 `json:"mrp"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// ExtractJSONObject pulls a JSON object out of a model reply that may be
// wrapped in prose or markdown code fences.
func ExtractJSONObject(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil, fmt.Errorf("unterminated JSON object in response")
	}
	return []byte(text[start : end+1]), nil
}

// NormalizeBillJSON
// - renames known synonyms (hospital -> hospital_name, line_items -> items)
// - coerces numeric strings to numbers for money-ish fields
// - drops null/empty optionals and unknown keys
// so the document can pass strict schema validation despite model drift.
func NormalizeBillJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("normalize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to our schema
	renamed("hospital", "hospital_name")
	renamed("hospital_name_as_printed", "hospital_name")
	renamed("date", "bill_date")
	renamed("invoice_number", "bill_number")
	renamed("line_items", "items")
	renamed("total", "grand_total")
	renamed("total_amount", "grand_total")
	renamed("gst", "tax")

	// 2) coerce money-ish top-level fields; drop empties
	moneyFields := []string{"subtotal", "discount", "tax", "cgst", "sgst", "grand_total", "confidence"}
	for _, k := range moneyFields {
		coerceNumber(m, k, &dropped)
	}

	// 3) is_medical_bill may arrive as a string
	if v, ok := m["is_medical_bill"].(string); ok {
		m["is_medical_bill"] = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if _, ok := m["is_medical_bill"]; !ok {
		// absent means the model had no objection; the OCR-path validator
		// stays authoritative for the document type
		m["is_medical_bill"] = true
	}

	// 4) normalize each item
	if arr, ok := m["items"].([]any); ok {
		cleaned := make([]any, 0, len(arr))
		for _, el := range arr {
			im, ok := el.(map[string]any)
			if !ok {
				dropped = append(dropped, "items(non-object)")
				continue
			}
			normalizeItem(im, &dropped)
			if name, _ := im["name"].(string); strings.TrimSpace(name) == "" {
				dropped = append(dropped, "items(unnamed)")
				continue
			}
			cleaned = append(cleaned, im)
		}
		m["items"] = cleaned
	} else {
		m["items"] = []any{}
	}

	// 5) remove unknown top-level keys
	allowed := map[string]struct{}{
		"hospital_name": {}, "bill_date": {}, "bill_number": {},
		"is_medical_bill": {}, "confidence": {}, "items": {},
		"subtotal": {}, "discount": {}, "tax": {}, "cgst": {}, "sgst": {},
		"grand_total": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("normalize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("vision.normalize", "dropped", dropped)
	}
	return out, dropped, nil
}

func normalizeItem(im map[string]any, dropped *[]string) {
	rename := func(from, to string) {
		if v, ok := im[from]; ok {
			if _, exists := im[to]; !exists {
				im[to] = v
			}
			delete(im, from)
		}
	}
	rename("item_name", "name")
	rename("description", "name")
	rename("price", "unit_price")
	rename("rate", "unit_price")
	rename("amount", "total")
	rename("total_amount", "total")
	rename("qty", "quantity")

	for _, k := range []string{"mrp", "unit_price", "total"} {
		coerceNumber(im, k, dropped)
	}
	// quantity must be an integer >= 1
	switch q := im["quantity"].(type) {
	case float64:
		if q < 1 {
			im["quantity"] = 1
		} else {
			im["quantity"] = int(q)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(q)); err == nil && n >= 1 {
			im["quantity"] = n
		} else {
			delete(im, "quantity")
			*dropped = append(*dropped, "items.quantity")
		}
	case nil:
		delete(im, "quantity")
	}

	allowed := map[string]struct{}{
		"name": {}, "category": {}, "quantity": {}, "unit": {}, "mrp": {},
		"unit_price": {}, "total": {},
	}
	for k := range maps.Clone(im) {
		if _, ok := allowed[k]; !ok {
			delete(im, k)
			*dropped = append(*dropped, "items."+k+"(unknown)")
		}
	}
	// off-enum category labels are recovered later by keyword
	// classification instead of failing validation
	if c, ok := im["category"].(string); ok {
		if canon, ok2 := constants.Canonicalize(c); ok2 {
			im["category"] = string(canon)
		} else {
			delete(im, "category")
		}
	}
}

func coerceNumber(m map[string]any, k string, dropped *[]string) {
	v, ok := m[k]
	if !ok {
		return
	}
	switch t := v.(type) {
	case float64:
		// already a number
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		s = strings.TrimPrefix(s, "₹")
		s = strings.TrimSpace(strings.TrimPrefix(s, "Rs."))
		if s == "" || strings.EqualFold(s, "null") {
			delete(m, k)
			*dropped = append(*dropped, k+"(empty)")
			return
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			m[k] = f
		} else {
			delete(m, k)
			*dropped = append(*dropped, k+"(unparseable)")
		}
	case nil:
		delete(m, k)
		*dropped = append(*dropped, k+"(null)")
	default:
		delete(m, k)
		*dropped = append(*dropped, k+"(type)")
	}
}

// DecodeBill turns a raw model reply into an Extraction, filling safe
// defaults for anything missing rather than failing the request. The
// returned bool is the model's own is_medical_bill verdict.
func DecodeBill(reply string, logger *slog.Logger) (extract.Extraction, bool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	obj, err := ExtractJSONObject(reply)
	if err != nil {
		return extract.Extraction{}, false, err
	}
	normalized, _, err := NormalizeBillJSON(obj, logger)
	if err != nil {
		return extract.Extraction{}, false, err
	}
	if verr := ValidateJSONAgainstSchema(BuildBillJSONSchema(), normalized); verr != nil {
		// keep going with defaults; validation failure downgrades trust,
		// it does not abort the tier
		logger.Warn("vision.schema_validation_failed", "error", verr)
	}

	var doc billDoc
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return extract.Extraction{}, false, fmt.Errorf("unmarshal bill doc: %w", err)
	}
	return docToExtraction(doc), doc.IsMedicalBill == nil || *doc.IsMedicalBill, nil
}

func docToExtraction(doc billDoc) extract.Extraction {
	out := extract.Extraction{
		Header: extract.BillHeader{
			HospitalName: strings.TrimSpace(doc.HospitalName),
			BillNumber:   strings.TrimSpace(doc.BillNumber),
			BillDate:     normalizeISODate(doc.BillDate),
		},
		Totals: extract.Totals{
			Subtotal:   doc.Subtotal,
			Discount:   doc.Discount,
			Tax:        doc.Tax,
			CGST:       doc.CGST,
			SGST:       doc.SGST,
			GrandTotal: doc.GrandTotal,
		},
	}
	if out.Header.HospitalName == "" {
		out.Header.HospitalName = "Unknown Hospital"
	}
	if out.Header.BillDate == "" {
		out.Header.BillDate = time.Now().Format("2006-01-02")
	}

	conf := doc.Confidence
	if conf > 1 {
		conf = conf / 100 // some models answer in percent
	}
	if conf < 0 {
		conf = 0
	}
	out.Confidence = float32(conf)

	for _, it := range doc.Items {
		cat := constants.Other
		if c, ok := constants.Canonicalize(it.Category); ok {
			cat = c
		} else {
			cat = constants.ClassifyItemName(it.Name)
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		out.Items = append(out.Items, extract.ExtractedItem{
			ItemName:    strings.TrimSpace(it.Name),
			Category:    cat,
			Quantity:    qty,
			Unit:        it.Unit,
			MRP:         it.MRP,
			UnitPrice:   it.UnitPrice,
			TotalBilled: it.Total,
		})
	}
	return out
}

func normalizeISODate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s
	}
	for _, layout := range []string{"2006/01/02", "02/01/2006", "02-01-2006", "January 2, 2006"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return ""
}
