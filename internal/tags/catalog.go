// Package tags holds the static catalog of relationship tags.
package tags

import (
	"errors"
	"fmt"

	"github.com/Veraticus/social-capital/internal/model"
)

// ErrUnknownTag is returned when a tag ID is not in the catalog.
var ErrUnknownTag = errors.New("unknown tag")

// Tag IDs referenced by the insight heuristics.
const (
	LifeExperience  = "life_experience"
	ResourcePool    = "resource_pool"
	InfoExchange    = "info_exchange"
	ValueFoundation = "value_foundation"
	GrowthEngine    = "growth_engine"
	InfluenceField  = "influence_field"
	WisdomAlly      = "wisdom_ally"
	EmotionalHarbor = "emotional_harbor"
)

// Group describes a tag category and the tags it owns.
type Group struct {
	ID          model.TagCategory
	Label       string
	Description string
	Color       string
	Tags        []model.Tag
}

// Catalog is a read-only lookup over tag groups.
type Catalog struct {
	byID   map[string]model.Tag
	groups []Group
}

// NewCatalog indexes the given groups. Each tag's Parent is set from its group.
func NewCatalog(groups ...Group) *Catalog {
	c := &Catalog{byID: make(map[string]model.Tag)}
	for _, g := range groups {
		tags := make([]model.Tag, len(g.Tags))
		for i, t := range g.Tags {
			t.Parent = g.ID
			tags[i] = t
			c.byID[t.ID] = t
		}
		g.Tags = tags
		c.groups = append(c.groups, g)
	}
	return c
}

// Lookup returns the tag with the given ID.
func (c *Catalog) Lookup(id string) (model.Tag, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Groups returns the tag groups in catalog order.
func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	return out
}

// All returns every tag in catalog order.
func (c *Catalog) All() []model.Tag {
	var out []model.Tag
	for _, g := range c.groups {
		out = append(out, g.Tags...)
	}
	return out
}

// Validate checks that every ID exists in the catalog.
func (c *Catalog) Validate(ids []string) error {
	for _, id := range ids {
		if _, ok := c.byID[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTag, id)
		}
	}
	return nil
}

var defaultCatalog = NewCatalog(
	Group{
		ID:          model.TagCategoryExternal,
		Label:       "External collaboration network",
		Description: "Functional relationships",
		Color:       "#10b981",
		Tags: []model.Tag{
			{
				ID:          LifeExperience,
				Label:       "Life experience circle",
				Description: "Nourish body and mind, widen horizons",
				Example:     "Food, travel, art, sports",
			},
			{
				ID:          ResourcePool,
				Label:       "Professional resource pool",
				Description: "Solve problems, secure daily life",
				Example:     "Legal counsel, family doctor, education contacts",
			},
			{
				ID:          InfoExchange,
				Label:       "Information exchange",
				Description: "Link diverse circles, stay sharp",
				Example:     "Cross-industry allies, friends from other generations",
			},
		},
	},
	Group{
		ID:          model.TagCategoryInternal,
		Label:       "Internal driving core",
		Description: "Growth relationships",
		Color:       "#f43f5e",
		Tags: []model.Tag{
			{
				ID:          ValueFoundation,
				Label:       "Value foundation",
				Description: "Root and pillar of the career",
				Example:     "Boss, partners, team members, key clients",
			},
			{
				ID:          GrowthEngine,
				Label:       "Growth engine",
				Description: "Explore more of what life can be",
				Example:     "Skill mentors, cross-over collaborators, investors",
			},
			{
				ID:          InfluenceField,
				Label:       "Influence field",
				Description: "Amplify personal value",
				Example:     "Endorsements, speaking and media opportunities",
			},
			{
				ID:          WisdomAlly,
				Label:       "Wisdom ally",
				Description: "Navigate and guard the journey",
				Example:     "Life mentors, professional coaches, fellow travellers",
			},
			{
				ID:          EmotionalHarbor,
				Label:       "Emotional harbor",
				Description: "Comfort and support",
				Example:     "Partner, closest friends, family",
			},
		},
	},
)

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}
