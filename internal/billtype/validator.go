// Package billtype decides whether OCR text is a medical bill at all,
// short-circuiting the pipeline before any price comparison.
package billtype

import (
	"fmt"
	"regexp"
	"strings"
)

// Result is the validator verdict. Confidence is 0-100.
type Result struct {
	IsMedicalBill bool
	Confidence    int
	Reason        string
}

// medicalIndicators are substrings that only plausibly occur on hospital
// or pharmacy paperwork.
var medicalIndicators = []string{
	"hospital", "clinic", "medical", "patient", "doctor", "dr.", "physician",
	"consultation", "diagnosis", "pharmacy", "tablet", "capsule", "injection",
	"pathology", "laboratory", "lab test", "x-ray", "mri", "ct scan",
	"ultrasound", "blood", "ward", "icu", "opd", "ipd", "admission",
	"discharge", "nursing", "surgery", "prescription", "dosage", "treatment",
	"ecg", "uhid", "healthcare", "medicare", "ambulance",
}

// nonMedicalIndicators are grouped so a rejection can name the likely
// document type in its reason.
var nonMedicalIndicators = map[string][]string{
	"retail/grocery": {
		"grocery", "supermarket", "hypermarket", "kirana", "mart",
		"vegetables", "fruits", "bakery", "apparel", "garments", "footwear",
	},
	"restaurant": {
		"restaurant", "cafe", "food court", "dine in", "takeaway",
		"service charge", "menu", "beverages",
	},
	"utilities": {
		"electricity", "power bill", "water bill", "gas cylinder",
		"broadband", "postpaid", "prepaid recharge", "units consumed",
	},
	"transport": {
		"taxi", "cab fare", "bus ticket", "train ticket", "flight",
		"airline", "boarding", "toll", "fuel", "petrol", "diesel",
	},
	"banking/finance": {
		"account statement", "ifsc", "emi", "loan", "interest rate",
		"premium due", "policy no", "mutual fund", "demat",
	},
	"e-commerce": {
		"order id", "tracking id", "shipped to", "seller", "marketplace",
		"return policy", "delivery charges", "cod",
	},
	"home services": {
		"plumbing", "carpenter", "electrician", "pest control", "cleaning",
		"renovation", "labour charges",
	},
}

var reAmountLike = regexp.MustCompile(`(?:rs\.?|inr|₹)\s*\d|[\d,]+\.\d{2}`)

// Validate counts case-insensitive lexicon hits and applies a fixed
// decision table, first match wins.
func Validate(ocrText string) Result {
	text := strings.ToLower(ocrText)

	medicalHits := 0
	for _, kw := range medicalIndicators {
		if strings.Contains(text, kw) {
			medicalHits++
		}
	}

	nonMedicalHits := 0
	topGroup, topGroupHits := "", 0
	for group, kws := range nonMedicalIndicators {
		hits := 0
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		nonMedicalHits += hits
		if hits > topGroupHits {
			topGroup, topGroupHits = group, hits
		}
	}

	switch {
	case medicalHits == 0 && nonMedicalHits == 0 && reAmountLike.MatchString(text):
		return Result{
			IsMedicalBill: false,
			Confidence:    30,
			Reason:        "document contains amounts but no medical vocabulary",
		}
	case medicalHits == 0 && nonMedicalHits == 0:
		return Result{
			IsMedicalBill: false,
			Confidence:    10,
			Reason:        "document does not look like a bill",
		}
	case medicalHits >= 3 && nonMedicalHits <= 1:
		return Result{
			IsMedicalBill: true,
			Confidence:    min(95, 50+5*medicalHits),
		}
	case medicalHits >= 1 && nonMedicalHits == 0:
		return Result{
			IsMedicalBill: true,
			Confidence:    min(80, 40+10*medicalHits),
		}
	case nonMedicalHits > medicalHits:
		return Result{
			IsMedicalBill: false,
			Confidence:    min(90, 50+10*nonMedicalHits),
			Reason:        fmt.Sprintf("document looks like a %s bill", topGroup),
		}
	default:
		// mixed signals
		return Result{
			IsMedicalBill: medicalHits >= 2,
			Confidence:    50,
		}
	}
}
