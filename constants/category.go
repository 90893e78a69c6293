package constants

import (
	"strings"
)

type Category string

const (
	Medicine     Category = "Medicine"
	Test         Category = "Test"
	Room         Category = "Room"
	Consultation Category = "Consultation"
	Nursing      Category = "Nursing"
	Surgery      Category = "Surgery"
	Consumable   Category = "Consumable"
	Equipment    Category = "Equipment"
	Other        Category = "Other"
)

var allCategories = []Category{
	Medicine,
	Test,
	Room,
	Consultation,
	Nursing,
	Surgery,
	Consumable,
	Equipment,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-form category label (a section header from the
// bill, or whatever the extraction backend guessed) onto the fixed enum.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"pharmacy":        Medicine,
		"medicines":       Medicine,
		"drugs":           Medicine,
		"medication":      Medicine,
		"lab":             Test,
		"laboratory":      Test,
		"investigation":   Test,
		"investigations":  Test,
		"diagnostics":     Test,
		"pathology":       Test,
		"radiology":       Test,
		"room charges":    Room,
		"bed charges":     Room,
		"accommodation":   Room,
		"ward":            Room,
		"doctor":          Consultation,
		"consultant":      Consultation,
		"opd":             Consultation,
		"visit":           Consultation,
		"nursing charges": Nursing,
		"operation":       Surgery,
		"procedure":       Surgery,
		"ot charges":      Surgery,
		"consumables":     Consumable,
		"disposables":     Consumable,
		"misc":            Other,
		"miscellaneous":   Other,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}

// categoryKeywords is the shared keyword-to-category table used by the regex
// parser, the sanitizer and the AI-result normalizer. First hit wins, so the
// more specific vocabularies come before the generic ones.
var categoryKeywords = []struct {
	cat   Category
	words []string
}{
	{Surgery, []string{"surgery", "surgical", "operation theatre", "ot charge", "anesthesia", "anaesthesia", "dialysis", "angioplasty", "transplant"}},
	{Test, []string{"blood count", "cbc", "x-ray", "xray", "mri", "ct scan", "ultrasound", "sonography", "ecg", "echo", "biopsy", "culture", "urine", "lipid", "thyroid", "glucose", "hemoglobin", "haemoglobin", "profile", "test", "scan", "screening"}},
	{Room, []string{"room rent", "room charge", "bed charge", "icu", "ward", "cabin", "deluxe room", "private room", "general bed", "accommodation"}},
	{Consultation, []string{"consultation", "consulting", "doctor fee", "doctor visit", "physician", "specialist", "opd", "registration fee"}},
	{Nursing, []string{"nursing", "nurse", "attendant", "injection charge", "dressing charge"}},
	{Equipment, []string{"ventilator", "oxygen", "monitor", "nebulizer", "nebuliser", "infusion pump", "wheelchair", "equipment"}},
	{Consumable, []string{"syringe", "gloves", "cannula", "catheter", "gauze", "bandage", "cotton", "iv set", "drip set", "consumable", "disposable"}},
	{Medicine, []string{"tablet", "tab ", "capsule", "cap ", "syrup", "injection", "inj ", "inj.", "ointment", "drops", "cream", "gel", " mg", " ml", "mcg", "vial", "ampoule", "strip", "sachet"}},
}

// ClassifyItemName derives a category from an item's free-text name using
// the keyword table. Unmatched names fall through to Other.
func ClassifyItemName(name string) Category {
	n := " " + strings.ToLower(strings.TrimSpace(name)) + " "
	for _, kw := range categoryKeywords {
		for _, w := range kw.words {
			if strings.Contains(n, w) {
				return kw.cat
			}
		}
	}
	return Other
}
