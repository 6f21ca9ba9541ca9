package insight

import (
	"fmt"

	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/tags"
)

// Heuristic thresholds.
const (
	minExternalShare     = 0.3
	cornerstoneMinAccess = 4.0
)

// Report bundles the summary with the findings derived from it.
type Report struct {
	Findings []model.Finding
	Summary  Summary
}

// Analyze summarises contacts and generates findings in one pass.
func Analyze(contacts []model.Contact, catalog *tags.Catalog) Report {
	s := Summarize(contacts, catalog)
	return Report{
		Summary:  s,
		Findings: findingsFor(contacts, s),
	}
}

// GenerateFindings runs the fixed heuristic checks over a classified population.
// Checks are independent and emitted in a fixed order. An empty population
// yields only the no-contacts placeholder.
func GenerateFindings(contacts []model.Contact, catalog *tags.Catalog) []model.Finding {
	return findingsFor(contacts, Summarize(contacts, catalog))
}

func findingsFor(contacts []model.Contact, s Summary) []model.Finding {
	if s.Total == 0 {
		return []model.Finding{{
			Kind:        model.FindingNoContacts,
			Severity:    model.SeverityInfo,
			Title:       "No contacts yet",
			Description: "Add contacts to generate insights.",
		}}
	}

	var findings []model.Finding

	if s.TagCounts[tags.GrowthEngine] == 0 && s.TagCounts[tags.WisdomAlly] == 0 {
		findings = append(findings, model.Finding{
			Kind:        model.FindingGrowthVacuum,
			Severity:    model.SeverityWarning,
			Title:       "Growth vacuum",
			Description: "Nobody in your network is tagged as a growth engine or wisdom ally. Long-term growth drivers are missing.",
		})
	}

	if share, ok := s.ExternalShare(); ok && share < minExternalShare {
		findings = append(findings, model.Finding{
			Kind:     model.FindingLowDiversity,
			Severity: model.SeverityInfo,
			Title:    "Low network diversity",
			Description: fmt.Sprintf(
				"Only %.0f%% of your tags point outside your core circle (%d external, %d internal). Watch for an echo chamber.",
				share*100, s.ExternalTags, s.InternalTags),
		})
	}

	weak := 0
	for _, c := range contacts {
		if c.HasTag(tags.ValueFoundation) && c.Score.Z < cornerstoneMinAccess {
			weak++
		}
	}
	if weak > 0 {
		findings = append(findings, model.Finding{
			Kind:     model.FindingWeakCornerstone,
			Severity: model.SeverityCritical,
			Title:    "Cornerstone out of reach",
			Description: fmt.Sprintf(
				"%d value-foundation contacts have accessibility below %.0f. Your career pillars are hard to reach.",
				weak, cornerstoneMinAccess),
		})
	}

	if s.AverageY < lowAverage {
		findings = append(findings, model.Finding{
			Kind:        model.FindingEnergyDeficit,
			Severity:    model.SeverityInfo,
			Title:       "Energy deficit",
			Description: "Your network's average energy is low. Prioritize connecting with high-energy individuals (high Y) to boost opportunities.",
		})
	}

	if s.AverageX < lowAverage {
		findings = append(findings, model.Finding{
			Kind:        model.FindingRelevanceMismatch,
			Severity:    model.SeverityInfo,
			Title:       "Relevance mismatch",
			Description: "Many contacts have low alignment with your core goals. Consider pruning or finding more relevant peers.",
		})
	}

	if s.Count(model.CategoryCorePower) == 0 {
		findings = append(findings, model.Finding{
			Kind:        model.FindingMissingCorePower,
			Severity:    model.SeverityCritical,
			Title:       "Missing core power",
			Description: "You lack core power allies (high X, Y and Z). Cultivating these relationships is critical for stability.",
		})
	}

	return findings
}
