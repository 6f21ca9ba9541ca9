// Package insight derives dashboard statistics and advisory findings from a
// classified contact population.
package insight

import (
	"math"

	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/tags"
)

// Dashboard subtitle thresholds.
const (
	highRelevanceAverage = 7.0
	lowAverage           = 5.0
)

// CategoryStat is the population share of one category.
type CategoryStat struct {
	Category model.Category
	Count    int
	Percent  int
}

// Summary aggregates a contact population.
type Summary struct {
	TagCounts     map[string]int
	Categories    []CategoryStat
	Total         int
	AverageX      float64
	AverageY      float64
	AverageZ      float64
	ExternalTags  int
	InternalTags  int
	HighRelevance bool
	LowEnergy     bool
}

// Count returns the number of contacts in category c.
func (s Summary) Count(c model.Category) int {
	for _, stat := range s.Categories {
		if stat.Category == c {
			return stat.Count
		}
	}
	return 0
}

// ExternalShare returns the fraction of tag instances that are external, and
// false when no catalogued tags are present.
func (s Summary) ExternalShare() (float64, bool) {
	total := s.ExternalTags + s.InternalTags
	if total == 0 {
		return 0, false
	}
	return float64(s.ExternalTags) / float64(total), true
}

// Summarize computes the dashboard statistics for contacts. Tags missing from
// catalog are ignored. With no contacts every average is zero.
func Summarize(contacts []model.Contact, catalog *tags.Catalog) Summary {
	s := Summary{
		Total:     len(contacts),
		TagCounts: make(map[string]int),
	}

	counts := make(map[model.Category]int, len(model.AllCategories))
	var sumX, sumY, sumZ float64
	for _, c := range contacts {
		counts[c.Category]++
		sumX += c.Score.X
		sumY += c.Score.Y
		sumZ += c.Score.Z

		for _, id := range c.Tags {
			tag, ok := catalog.Lookup(id)
			if !ok {
				continue
			}
			s.TagCounts[id]++
			switch tag.Parent {
			case model.TagCategoryExternal:
				s.ExternalTags++
			case model.TagCategoryInternal:
				s.InternalTags++
			}
		}
	}

	for _, c := range model.AllCategories {
		stat := CategoryStat{Category: c, Count: counts[c]}
		if s.Total > 0 {
			stat.Percent = int(math.Round(float64(stat.Count) / float64(s.Total) * 100))
		}
		s.Categories = append(s.Categories, stat)
	}

	if s.Total > 0 {
		n := float64(s.Total)
		s.AverageX = sumX / n
		s.AverageY = sumY / n
		s.AverageZ = sumZ / n
		s.HighRelevance = s.AverageX > highRelevanceAverage
		s.LowEnergy = s.AverageY < lowAverage
	}

	return s
}
