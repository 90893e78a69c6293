package textparse

import (
	"regexp"

	"github.com/medbillguard/medbillguard/constants"
)

// The parser is table-driven: skip rules, section headers and totals labels
// are data, so the lexicons can be unit-tested and extended without touching
// control flow.

// skipPatterns mark lines that are never billable items even when they
// carry an amount: totals and tax rows, contact info, demographics,
// document metadata, payment rows, footer boilerplate.
var skipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:sub\s*-?\s*total|gross\s*(?:total|amount)|grand\s*total|net\s*(?:total|amount|payable)|total\s*(?:amount|payable|qty)?)\b`),
	regexp.MustCompile(`(?i)\b(?:cgst|sgst|igst|gst)\b`),
	regexp.MustCompile(`(?i)\b(?:round\s*off|rounding|amount\s+in\s+words)\b`),
	regexp.MustCompile(`(?i)\b(?:discount|concession)\b`),
	regexp.MustCompile(`(?i)\b(?:phone|mobile|tel|telephone|fax|e-?mail|website)\b`),
	regexp.MustCompile(`(?i)\b(?:address|road|street|lane|nagar|district|pincode|pin\s*code)\b`),
	regexp.MustCompile(`(?i)\b(?:patient|uhid|mrn|ipd|opd\s*no|reg(?:n)?\.?\s*no)\b`),
	regexp.MustCompile(`(?i)\b(?:age|sex|gender|d\.?o\.?b)\s*[:/]`),
	regexp.MustCompile(`(?i)\b(?:admission|discharge)\s*(?:date|time)\b`),
	regexp.MustCompile(`(?i)\b(?:bill|invoice|receipt)\s*(?:no|number|date)\b`),
	regexp.MustCompile(`(?i)\b(?:consultant|referred\s+by|prepared\s+by|checked\s+by)\b`),
	regexp.MustCompile(`(?i)\b(?:paid|payment|balance|advance|cash|cheque|card\s*no)\b`),
	regexp.MustCompile(`(?i)(?:thank\s+you|get\s+well|signature|authori[sz]ed|e\s*&\s*o\s*e|terms\s+and\s+conditions)`),
	regexp.MustCompile(`\d{2}[A-Z]{5}\d{4}[A-Z][A-Z\d]Z[A-Z\d]`), // GSTIN anywhere
	regexp.MustCompile(`(?i)^\s*(?:sr|sl|s)\.?\s*no\.?\b`),       // table header row
	regexp.MustCompile(`(?i)\bqty\b.*\brate\b|\bparticulars\b|\bdescription\b.*\bamount\b`),
}

// sectionHeaders switch the parser's current-category cursor. Matched only
// on lines that carry no amount.
var sectionHeaders = []struct {
	re  *regexp.Regexp
	cat constants.Category
}{
	{regexp.MustCompile(`(?i)^\s*(?:pharmacy|medicines?|medication|drugs)\s*:?\s*$`), constants.Medicine},
	{regexp.MustCompile(`(?i)^\s*(?:laboratory|lab\s+(?:tests?|charges)|investigations?|pathology|diagnostics|radiology)\s*:?\s*$`), constants.Test},
	{regexp.MustCompile(`(?i)^\s*(?:room\s+(?:charges?|rent)|bed\s+charges?|accommodation|ward\s+charges?)\s*:?\s*$`), constants.Room},
	{regexp.MustCompile(`(?i)^\s*(?:consultation(?:\s+charges?)?|doctor\s+(?:fees?|visits?)|professional\s+(?:fees?|charges))\s*:?\s*$`), constants.Consultation},
	{regexp.MustCompile(`(?i)^\s*(?:nursing(?:\s+charges?)?)\s*:?\s*$`), constants.Nursing},
	{regexp.MustCompile(`(?i)^\s*(?:surgery|surgical\s+charges?|operation\s+theatre|ot\s+charges?|procedures?)\s*:?\s*$`), constants.Surgery},
	{regexp.MustCompile(`(?i)^\s*(?:consumables?|disposables?)\s*:?\s*$`), constants.Consumable},
	{regexp.MustCompile(`(?i)^\s*(?:equipment(?:\s+charges?)?|machine\s+charges?)\s*:?\s*$`), constants.Equipment},
	{regexp.MustCompile(`(?i)^\s*(?:other\s+charges?|miscellaneous|misc\.?)\s*:?\s*$`), constants.Other},
}

// totals rows are matched by independent label-anchored patterns; absence
// simply leaves the field nil.
var totalsPatterns = []struct {
	field string
	re    *regexp.Regexp
}{
	{"subtotal", regexp.MustCompile(`(?i)\b(?:gross\s*(?:total|amount)|sub\s*-?\s*total)\b[^\d]*([\d,]+(?:\.\d{1,2})?)`)},
	{"grand", regexp.MustCompile(`(?i)\b(?:grand\s*total|net\s*(?:amount|payable|total)|total\s*(?:amount\s*)?payable)\b[^\d]*([\d,]+(?:\.\d{1,2})?)`)},
	{"discount", regexp.MustCompile(`(?i)\b(?:discount|concession)\b[^\d]*([\d,]+(?:\.\d{1,2})?)`)},
	{"cgst", regexp.MustCompile(`(?i)\bcgst\b[^\d]*(?:@?\s*[\d.]+\s*%)?[^\d]*([\d,]+(?:\.\d{1,2})?)`)},
	{"sgst", regexp.MustCompile(`(?i)\bsgst\b[^\d]*(?:@?\s*[\d.]+\s*%)?[^\d]*([\d,]+(?:\.\d{1,2})?)`)},
}

var (
	reGSTIN      = regexp.MustCompile(`\b\d{2}[A-Z]{5}\d{4}[A-Z][A-Z\d]Z[A-Z\d]\b`)
	reDateToken  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	reBillNumber = regexp.MustCompile(`(?i)\b(?:bill|invoice|receipt)\s*(?:no|number)\s*[.:#]*\s*([A-Za-z0-9/-]+)`)
	reAmount     = regexp.MustCompile(`\d{1,3}(?:,\d{2,3})+(?:\.\d{1,2})?|\d+\.\d{1,2}|\d+`)
	reQtyLabel   = regexp.MustCompile(`(?i)\b(?:qty|quantity|nos)\s*[.:]?\s*(\d{1,3})\b`)
	reQtyTimes   = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:x|nos|units?)\b`)

	reLeadingOrdinal = regexp.MustCompile(`^\s*\d{1,3}\s*[.)]\s+`)
	reNameQty        = regexp.MustCompile(`(?i)\b(?:qty|quantity|nos)\s*[.:]?\s*\d+\b`)
	reNameMRP        = regexp.MustCompile(`(?i)\bmrp\s*[.:]?\s*[\d,]+(?:\.\d{1,2})?\b`)
	reNameTotal      = regexp.MustCompile(`(?i)\b(?:total|amount)\s*[.:]?\s*[\d,]+(?:\.\d{1,2})?\b`)
	// trailing \b keeps dosage figures ("500mg") out of the strip
	reNameAmount = regexp.MustCompile(`(?:(?:rs\.?|inr|₹)\s*)?\d[\d,]*(?:\.\d{1,2})?\b`)
)
