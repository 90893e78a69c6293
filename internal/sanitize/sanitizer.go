package sanitize

import (
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/extract"
)

// Config carries the sanitizer's tunable limits.
type Config struct {
	MinNameLen        int     // names shorter than this are noise; default 3
	MaxPlausiblePrice float64 // unit prices above this need medical context; default 100000
	TotalTolerance    float64 // |unitPrice - grandTotal| below this flags a totals row; default 1.0
}

// Sanitizer decides, per candidate item, whether it is a real billable line
// or invoice metadata misidentified as one. It is applied uniformly to the
// output of every extraction tier.
type Sanitizer struct {
	cfg      Config
	keywords []string
	logger   *slog.Logger
}

var (
	reNumericOnly = regexp.MustCompile(`^[\d\s\-()./]+$`)
	rePhoneDigits = regexp.MustCompile(`\d{10}`)
	rePhoneFormat = regexp.MustCompile(`\d{3}[-\s]\d{3}[-\s]\d{4}`)
	reGSTIN       = regexp.MustCompile(`\d{2}[A-Za-z]{5}\d{4}[A-Za-z]\d[A-Za-z\d]`)
	reDosage      = regexp.MustCompile(`(?i)\d+\s*(mg|ml|mcg|gm|g|iu|units?)\b`)
)

func New(cfg Config, logger *slog.Logger) *Sanitizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinNameLen <= 0 {
		cfg.MinNameLen = 3
	}
	if cfg.MaxPlausiblePrice <= 0 {
		cfg.MaxPlausiblePrice = 100000
	}
	if cfg.TotalTolerance <= 0 {
		cfg.TotalTolerance = 1.0
	}
	return &Sanitizer{cfg: cfg, keywords: MetadataKeywords, logger: logger}
}

// Accept normalizes the item and reports whether it survives. The returned
// reason is empty on acceptance.
func (s *Sanitizer) Accept(it extract.ExtractedItem, grandTotal float64) (extract.ExtractedItem, string) {
	name := strings.TrimSpace(it.ItemName)
	lower := strings.ToLower(name)

	if len(name) < s.cfg.MinNameLen {
		return it, "name too short"
	}
	for _, kw := range s.keywords {
		if strings.Contains(lower, kw) {
			return it, "metadata keyword: " + kw
		}
	}
	if reNumericOnly.MatchString(name) {
		return it, "numeric-only name"
	}
	if rePhoneDigits.MatchString(name) || rePhoneFormat.MatchString(name) {
		return it, "phone-like number in name"
	}
	if reGSTIN.MatchString(name) {
		return it, "gstin-like token in name"
	}

	it = normalize(it)

	if grandTotal > 0 && math.Abs(it.UnitPrice-grandTotal) < s.cfg.TotalTolerance {
		return it, "price equals bill grand total"
	}
	if it.UnitPrice > s.cfg.MaxPlausiblePrice && !looksMedical(lower) {
		return it, "implausible price without medical context"
	}
	if it.UnitPrice <= 0 && !isDiscountLine(lower) {
		return it, "zero or negative price"
	}

	it.ItemName = name
	if it.Category == "" || it.Category == constants.Other {
		if cat := constants.ClassifyItemName(name); cat != constants.Other {
			it.Category = cat
		} else if it.Category == "" {
			it.Category = constants.Other
		}
	}
	return it, ""
}

// Filter applies Accept to every item and keeps the survivors.
func (s *Sanitizer) Filter(items []extract.ExtractedItem, grandTotal float64) []extract.ExtractedItem {
	kept := make([]extract.ExtractedItem, 0, len(items))
	for _, it := range items {
		clean, reason := s.Accept(it, grandTotal)
		if reason != "" {
			s.logger.Debug("sanitize.reject", "item", it.ItemName, "reason", reason)
			continue
		}
		kept = append(kept, clean)
	}
	return kept
}

// normalize fills quantity and the missing one of unitPrice/totalBilled.
func normalize(it extract.ExtractedItem) extract.ExtractedItem {
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	if it.UnitPrice == 0 && it.TotalBilled != 0 {
		it.UnitPrice = it.TotalBilled / float64(it.Quantity)
	}
	if it.TotalBilled == 0 && it.UnitPrice != 0 {
		it.TotalBilled = it.UnitPrice * float64(it.Quantity)
	}
	return it
}

func looksMedical(lower string) bool {
	if reDosage.MatchString(lower) {
		return true
	}
	for _, t := range medicalTerms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func isDiscountLine(lower string) bool {
	for _, m := range discountMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
