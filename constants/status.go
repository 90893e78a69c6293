package constants

// ComparisonStatus is the canonical per-item verdict after price matching.
type ComparisonStatus string

// Stable values (these exact strings appear in stored results and exports).
const (
	StatusFair        ComparisonStatus = "fair"        // at or below the government ceiling
	StatusOvercharged ComparisonStatus = "overcharged" // above ceiling, within 2x
	StatusSuspicious  ComparisonStatus = "suspicious"  // more than double the ceiling
	StatusNotFound    ComparisonStatus = "not_found"   // no catalog entry matched
)

// ParseMethod tags which extraction tier won the cascade. Required in every
// analysis result for observability.
type ParseMethod string

const (
	MethodInvoice  ParseMethod = "tier-1-invoice"
	MethodVision   ParseMethod = "tier-2-vision"
	MethodText     ParseMethod = "tier-3-text"
	MethodRegex    ParseMethod = "tier-4-regex"
	MethodDemoMock ParseMethod = "demo-mock"
)
