// Package catalog holds the government reference price table: the ground
// truth bills are judged against. Entries are loaded once at startup and
// only ever read after that.
package catalog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Entry is one reference price record. CeilingPrice is the government-set
// maximum fair price; loaders drop entries that violate CeilingPrice > 0.
type Entry struct {
	CategoryName  string  `json:"category"`
	ItemName      string  `json:"item_name"`
	ItemCode      string  `json:"item_code,omitempty"`
	CeilingPrice  float64 `json:"ceiling_price"`
	Unit          string  `json:"unit,omitempty"`
	Source        string  `json:"source"`         // provenance, e.g. "NPPA", "CGHS"
	PublishedDate string  `json:"published_date"` // YYYY-MM-DD
}

// Catalog is an immutable in-memory collection of entries.
type Catalog struct {
	entries []Entry
}

// New builds a catalog, dropping invalid entries. It returns an error only
// when nothing usable remains.
func New(entries []Entry, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.ItemName) == "" {
			logger.Warn("catalog.entry.skipped", "reason", "empty item name")
			continue
		}
		if e.CeilingPrice <= 0 {
			logger.Warn("catalog.entry.skipped", "item", e.ItemName, "reason", "non-positive ceiling price")
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("catalog has no valid entries")
	}
	return &Catalog{entries: kept}, nil
}

// Entries returns the full entry list. Callers must not mutate it.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// ByCategory returns the entries whose category equals cat, case-insensitive.
func (c *Catalog) ByCategory(cat string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if strings.EqualFold(e.CategoryName, cat) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}
