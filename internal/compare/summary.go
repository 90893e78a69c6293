package compare

import "github.com/medbillguard/medbillguard/constants"

// Summarize recomputes the bill-level summary from scratch. Unmatched items
// are counted at face value in the fair-price total so the summary never
// implies savings on items that could not be checked.
func Summarize(results []ComparisonResult) Summary {
	var s Summary
	for _, r := range results {
		s.TotalBilled += r.TotalBilled
		if r.GovtCeilingPrice != nil {
			s.TotalFairPrice += *r.GovtCeilingPrice * float64(r.Quantity)
		} else {
			s.TotalFairPrice += r.TotalBilled
		}
		s.TotalOvercharge += r.OverchargeAmount

		switch r.Status {
		case constants.StatusFair:
			s.FairCount++
		case constants.StatusOvercharged:
			s.OverchargedCount++
		case constants.StatusSuspicious:
			s.SuspiciousCount++
		case constants.StatusNotFound:
			s.NotFoundCount++
		}
	}
	if s.TotalBilled > 0 {
		s.SavingsPercent = s.TotalOvercharge / s.TotalBilled * 100
	}
	return s
}
