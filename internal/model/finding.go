package model

// Severity ranks how urgent a finding is.
type Severity string

// Severity constants.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// FindingKind identifies which heuristic produced a finding.
type FindingKind string

// Finding kinds in emission order.
const (
	FindingNoContacts        FindingKind = "no_contacts"
	FindingGrowthVacuum      FindingKind = "growth_vacuum"
	FindingLowDiversity      FindingKind = "low_diversity"
	FindingWeakCornerstone   FindingKind = "weak_cornerstone"
	FindingEnergyDeficit     FindingKind = "energy_deficit"
	FindingRelevanceMismatch FindingKind = "relevance_mismatch"
	FindingMissingCorePower  FindingKind = "missing_core_power"
)

// Finding is an advisory produced from the classified population.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	Severity    Severity    `json:"severity"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}
