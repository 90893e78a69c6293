package sanitize

// MetadataKeywords is the default blocklist of invoice-metadata vocabulary.
// A candidate item whose name contains any of these (case-insensitive) is
// noise from the bill's header/footer, not a billable line. Kept as data so
// the lexicon can be unit-tested and extended without touching control flow.
var MetadataKeywords = []string{
	// document identity
	"invoice no", "invoice number", "bill no", "bill number", "receipt no",
	"receipt number", "ref no", "reference no", "token no", "serial no",
	"page no", "page ",
	// tax / statutory rows
	"gstin", "gst no", "gst number", "cgst", "sgst", "igst", "tax invoice",
	"pan no", "pan number", "hsn", "sac code", "tax amount", "taxable value",
	// totals rows
	"sub total", "subtotal", "sub-total", "grand total", "net total",
	"total amount", "amount payable", "net payable", "amount due",
	"balance due", "round off", "rounding", "total qty", "amount in words",
	// payment rows
	"amount paid", "paid by", "payment mode", "cash paid", "credit card",
	"debit card", "cheque", "upi id", "advance paid", "refund",
	// contact / address fragments
	"phone", "mobile", "tel no", "telephone", "fax", "email", "e-mail",
	"website", "www.", ".com", "pin code", "pincode", "road", "street",
	"floor", "building", "opp.", "near ",
	// patient / visit metadata
	"patient name", "patient id", "uhid", "mrn", "ipd no", "opd no",
	"admission date", "discharge date", "admission no", "consultant name",
	"referred by", "age/sex", "age / sex", "date of birth",
	// signatures and footers
	"signature", "authorised signatory", "authorized signatory",
	"for city", "thank you", "get well soon", "terms and conditions",
	"e&oe", "checked by", "prepared by", "received by",
}

// medicalTerms marks names that plausibly denote genuinely expensive care.
// The high-price guard only rejects a large amount when none of these (and
// no dosage pattern) appear in the name.
var medicalTerms = []string{
	"surgery", "surgical", "operation", "transplant", "bypass", "angioplasty",
	"angiography", "stent", "implant", "icu", "ccu", "nicu", "ventilator",
	"dialysis", "chemotherapy", "radiotherapy", "mri", "ct scan", "pet scan",
	"cath lab", "laparoscopy", "endoscopy", "delivery", "caesarean",
	"cesarean", "fracture", "arthroplasty", "replacement", "package",
	"procedure", "anesthesia", "anaesthesia",
}

// discountMarkers let a zero or negative price through when the row is an
// explicit concession rather than a misread.
var discountMarkers = []string{"discount", "concession", "waiver", "less", "rebate"}
