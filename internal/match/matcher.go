// Package match resolves noisy, inconsistently-named bill items against
// the reference price catalog.
package match

import (
	"log/slog"
	"strings"

	"github.com/medbillguard/medbillguard/internal/catalog"
	"github.com/medbillguard/medbillguard/internal/extract"
)

// Config carries the matching thresholds. The defaults are empirically
// tuned; downstream classification quality depends on them.
type Config struct {
	AcceptThreshold float64 // minimum boosted score to accept; default 0.4
	HighConfidence  float64 // same-category score that ends the search; default 0.7
	CategoryBoost   float64 // bonus when categories coincide; default 0.1
}

// Match pairs a catalog entry with the score that won it.
type Match struct {
	Entry catalog.Entry
	Score float64
}

// Matcher finds the best reference entry for an extracted item, category
// subset first, whole catalog as fallback. Category match is a strong
// prior (hospitals misname items far more often than they miscategorize
// them), so a confident same-category hit skips the global pass, but the
// global pass protects against the category tag itself being wrong.
type Matcher struct {
	catalog *catalog.Catalog
	cfg     Config
	logger  *slog.Logger
}

func New(cat *catalog.Catalog, cfg Config, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AcceptThreshold <= 0 {
		cfg.AcceptThreshold = 0.4
	}
	if cfg.HighConfidence <= 0 {
		cfg.HighConfidence = 0.7
	}
	if cfg.CategoryBoost <= 0 {
		cfg.CategoryBoost = 0.1
	}
	return &Matcher{catalog: cat, cfg: cfg, logger: logger}
}

// Best returns the winning match, or ok=false when nothing clears the
// acceptance threshold. An empty or nil catalog degrades to not-found
// rather than erroring: a partial result beats no result.
func (m *Matcher) Best(it extract.ExtractedItem) (Match, bool) {
	if m.catalog == nil || m.catalog.Len() == 0 {
		return Match{}, false
	}

	best, found := m.bestOf(it, m.catalog.ByCategory(string(it.Category)))
	if found && best.Score >= m.cfg.HighConfidence+m.cfg.CategoryBoost {
		// confident same-category hit; skip the global pass
		return best, true
	}

	global, gFound := m.bestOf(it, m.catalog.Entries())
	if gFound && (!found || global.Score > best.Score) {
		best, found = global, true
	}

	if found {
		m.logger.Debug("match.resolved",
			"item", it.ItemName,
			"entry", best.Entry.ItemName,
			"score", best.Score,
		)
	}
	return best, found
}

// bestOf scores the item against every candidate, boosting candidates in
// the item's own category, and keeps the best candidate that clears the
// acceptance threshold.
func (m *Matcher) bestOf(it extract.ExtractedItem, candidates []catalog.Entry) (Match, bool) {
	var best Match
	found := false
	for _, e := range candidates {
		score := Score(it.ItemName, e.ItemName)
		if score <= 0 {
			continue
		}
		if strings.EqualFold(string(it.Category), e.CategoryName) {
			score += m.cfg.CategoryBoost
		}
		if score > 1 {
			score = 1
		}
		if score >= m.cfg.AcceptThreshold && score > best.Score {
			best = Match{Entry: e, Score: score}
			found = true
		}
	}
	return best, found
}
