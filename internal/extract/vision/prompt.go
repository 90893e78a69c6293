package vision

import (
	"encoding/json"
	"strings"
)

// buildExtractionPrompt is shared by the image (tier-2) and OCR-text
// (tier-3) paths; only the attached content differs.
func buildExtractionPrompt() string {
	parts := []string{
		"You are a hospital bill parser. Return ONLY JSON that matches the JSON Schema provided.",
		"Extract every billable line item: medicines, tests, room charges, consultations, nursing, surgery, consumables, equipment.",
		"Do NOT emit invoice metadata (bill number, GSTIN, phone numbers, addresses, totals rows, tax rows, signatures) as items.",
		"Use ISO-8601 dates (YYYY-MM-DD). Amounts are plain numbers in INR, no currency symbols.",
		"Set is_medical_bill to false if the document is not a hospital or pharmacy bill.",
		"Set confidence between 0 and 1 for how legible the document is.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ") + "\n\n" + schemaBlock()
}

func schemaBlock() string {
	b, _ := json.MarshalIndent(BuildBillJSONSchema(), "", "  ")
	return "JSON Schema:\n" + string(b)
}
