package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
)

//go:embed seed.json
var seedJSON []byte

// LoadSeed builds the catalog from the embedded reference price list, so
// the binary works with no external files or database.
func LoadSeed(logger *slog.Logger) (*Catalog, error) {
	var entries []Entry
	if err := json.Unmarshal(seedJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return New(entries, logger)
}
