// Package compare turns matched (billed price, ceiling price) pairs into
// per-item verdicts and a bill-level summary.
package compare

import (
	"github.com/medbillguard/medbillguard/constants"
)

// ComparisonResult is the per-item output the rest of the system consumes.
// Created once by Classify, immutable thereafter.
type ComparisonResult struct {
	ItemName         string                     `json:"item_name"`
	Category         constants.Category         `json:"category"`
	Quantity         int                        `json:"quantity"`
	UnitPrice        float64                    `json:"unit_price"`
	TotalBilled      float64                    `json:"total_billed"`
	GovtCeilingPrice *float64                   `json:"govt_ceiling_price"` // nil = no catalog match
	OverchargeAmount float64                    `json:"overcharge_amount"`  // >= 0, zero unless overcharged/suspicious
	Status           constants.ComparisonStatus `json:"status"`
	PriceSource      string                     `json:"price_source,omitempty"`
	SourceDate       string                     `json:"source_date,omitempty"`
	MatchScore       float64                    `json:"match_score,omitempty"`
	Notes            string                     `json:"notes"`
}

// Summary is recomputed in full from a ComparisonResult list; it carries no
// state of its own.
type Summary struct {
	TotalBilled      float64 `json:"total_billed"`
	TotalFairPrice   float64 `json:"total_fair_price"`
	TotalOvercharge  float64 `json:"total_overcharge"`
	FairCount        int     `json:"fair_count"`
	OverchargedCount int     `json:"overcharged_count"`
	SuspiciousCount  int     `json:"suspicious_count"`
	NotFoundCount    int     `json:"not_found_count"`
	SavingsPercent   float64 `json:"savings_percent"`
}
