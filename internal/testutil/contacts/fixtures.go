package contacts

import (
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/tags"
)

// Spec describes one fixture contact.
type Spec struct {
	Name  string
	Tags  []string
	Score model.ScoreVector
}

// Fixture is a named, reusable set of contacts.
type Fixture []Spec

// FixtureOnePerCategory lands exactly one contact in each category under the
// default thresholds, in model.AllCategories order.
var FixtureOnePerCategory = Fixture{
	{Name: "Avery Core", Score: model.ScoreVector{X: 8, Y: 8, Z: 8}, Tags: []string{tags.ValueFoundation, tags.GrowthEngine}},
	{Name: "Blake Strategic", Score: model.ScoreVector{X: 8, Y: 8, Z: 2}, Tags: []string{tags.ResourcePool}},
	{Name: "Casey Prestige", Score: model.ScoreVector{X: 3, Y: 8, Z: 5}, Tags: []string{tags.InfluenceField}},
	{Name: "Drew Execution", Score: model.ScoreVector{X: 8, Y: 3, Z: 8}, Tags: []string{tags.InfoExchange}},
	{Name: "Emery Other", Score: model.ScoreVector{X: 2, Y: 2, Z: 2}},
}

// FixtureNeglected is a network that trips every insight check: no growth
// tags, mostly internal tags, unreachable cornerstones, low energy and
// relevance, and nobody in the core.
var FixtureNeglected = Fixture{
	{Name: "Frankie", Score: model.ScoreVector{X: 3, Y: 2, Z: 1}, Tags: []string{tags.ValueFoundation}},
	{Name: "Gray", Score: model.ScoreVector{X: 4, Y: 3, Z: 3}, Tags: []string{tags.ValueFoundation, tags.EmotionalHarbor}},
	{Name: "Harper", Score: model.ScoreVector{X: 2, Y: 4, Z: 6}, Tags: []string{tags.InfluenceField}},
}
