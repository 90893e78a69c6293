package compare

import (
	"fmt"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/extract"
	"github.com/medbillguard/medbillguard/internal/match"
)

// Config carries the classification heuristics.
type Config struct {
	// SuspiciousRatio is the overcharge/ceiling ratio beyond which an item
	// is flagged suspicious rather than merely overcharged. The default 1.0
	// means "charged more than double the ceiling".
	SuspiciousRatio float64
}

func (c Config) ratio() float64 {
	if c.SuspiciousRatio <= 0 {
		return 1.0
	}
	return c.SuspiciousRatio
}

// Classify converts one sanitized item plus its (possibly absent) catalog
// match into a ComparisonResult.
func Classify(it extract.ExtractedItem, m *match.Match, cfg Config) ComparisonResult {
	res := ComparisonResult{
		ItemName:    it.ItemName,
		Category:    it.Category,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		TotalBilled: it.TotalBilled,
	}

	if m == nil {
		res.Status = constants.StatusNotFound
		res.Notes = "no reference price found for this item"
		return res
	}

	entry := m.Entry
	ceiling := entry.CeilingPrice
	res.GovtCeilingPrice = &ceiling
	res.PriceSource = entry.Source
	res.SourceDate = entry.PublishedDate
	res.MatchScore = m.Score

	overchargePerUnit := it.UnitPrice - ceiling
	switch {
	case overchargePerUnit <= 0:
		res.Status = constants.StatusFair
		res.OverchargeAmount = 0
		res.Notes = fmt.Sprintf("within the %s ceiling of %.2f (matched %q)",
			entry.Source, ceiling, entry.ItemName)
	case overchargePerUnit/ceiling > cfg.ratio():
		res.Status = constants.StatusSuspicious
		res.OverchargeAmount = overchargePerUnit * float64(it.Quantity)
		res.Notes = fmt.Sprintf("charged %.2f against a ceiling of %.2f, over double the %s rate (matched %q)",
			it.UnitPrice, ceiling, entry.Source, entry.ItemName)
	default:
		res.Status = constants.StatusOvercharged
		res.OverchargeAmount = overchargePerUnit * float64(it.Quantity)
		res.Notes = fmt.Sprintf("charged %.2f above the %s ceiling of %.2f per unit (matched %q)",
			overchargePerUnit, entry.Source, ceiling, entry.ItemName)
	}
	if res.OverchargeAmount < 0 {
		res.OverchargeAmount = 0
	}
	return res
}
