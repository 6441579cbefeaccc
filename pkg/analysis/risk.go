package analysis

// RiskLevel classifies the blast radius of a change on an ordered scale.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskThresholds holds the cutoffs separating the risk levels. The values
// are tunable configuration; the ordering low < medium < high < critical is
// not.
type RiskThresholds struct {
	// MediumTotal is the impacted-entity count at which risk leaves low.
	MediumTotal int
	// HighTotal is the impacted-entity count at which risk becomes high
	// even without critical entities.
	HighTotal int
	// HighCritical is the critical-entity count at which risk becomes high.
	HighCritical int
	// CriticalTotal combined with one critical entity raises risk to
	// critical.
	CriticalTotal int
	// CriticalCount alone raises risk to critical.
	CriticalCount int
}

// DefaultRiskThresholds is the standard risk scale.
var DefaultRiskThresholds = RiskThresholds{
	MediumTotal:   3,
	HighTotal:     10,
	HighCritical:  1,
	CriticalTotal: 20,
	CriticalCount: 3,
}

// Level computes the risk level for a given impacted-entity total and
// critical-entity count. More impacted entities and more critical entities
// push the level upward through the ordered scale.
func (t RiskThresholds) Level(total, criticalCount int) RiskLevel {
	switch {
	case criticalCount >= t.CriticalCount,
		total >= t.CriticalTotal && criticalCount >= 1:
		return RiskCritical
	case criticalCount >= t.HighCritical, total >= t.HighTotal:
		return RiskHigh
	case total >= t.MediumTotal:
		return RiskMedium
	default:
		return RiskLow
	}
}
