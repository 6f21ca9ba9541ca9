package model

import (
	"errors"
	"fmt"
)

// Category is the strategic label derived from a contact's scores.
type Category string

// Category constants.
const (
	CategoryCorePower        Category = "CORE_POWER"
	CategoryStrategicGoal    Category = "STRATEGIC_GOAL"
	CategoryExecutionForce   Category = "EXECUTION_FORCE"
	CategoryPrestigeLeverage Category = "PRESTIGE_LEVERAGE"
	CategoryOthers           Category = "OTHERS"
)

// ErrInvalidCategory is returned for labels outside the configurable set.
var ErrInvalidCategory = errors.New("invalid category")

// PriorityOrder is the fixed evaluation order of the configurable categories.
// The first category whose rules match wins.
var PriorityOrder = []Category{
	CategoryCorePower,
	CategoryStrategicGoal,
	CategoryExecutionForce,
	CategoryPrestigeLeverage,
}

// AllCategories lists every category in display order, fallback last.
var AllCategories = []Category{
	CategoryCorePower,
	CategoryStrategicGoal,
	CategoryPrestigeLeverage,
	CategoryExecutionForce,
	CategoryOthers,
}

// CategoryInfo carries display metadata for a category.
type CategoryInfo struct {
	ID          Category
	Label       string
	Color       string
	Description string
}

var categoryInfo = map[Category]CategoryInfo{
	CategoryCorePower: {
		ID:          CategoryCorePower,
		Label:       "Core Power",
		Color:       "#ef4444",
		Description: "Maintain at any cost",
	},
	CategoryStrategicGoal: {
		ID:          CategoryStrategicGoal,
		Label:       "Strategic Goal",
		Color:       "#eab308",
		Description: "Center of the plan, find a way to connect",
	},
	CategoryPrestigeLeverage: {
		ID:          CategoryPrestigeLeverage,
		Label:       "Prestige Leverage",
		Color:       "#a855f7",
		Description: "Stay connected, raise visibility",
	},
	CategoryExecutionForce: {
		ID:          CategoryExecutionForce,
		Label:       "Execution Force",
		Color:       "#3b82f6",
		Description: "Delegate fully, grow together",
	},
	CategoryOthers: {
		ID:          CategoryOthers,
		Label:       "Others",
		Color:       "#9ca3af",
		Description: "Keep the basic relationship",
	},
}

// Info returns the display metadata for c. Unknown categories get a bare entry.
func (c Category) Info() CategoryInfo {
	if info, ok := categoryInfo[c]; ok {
		return info
	}
	return CategoryInfo{ID: c, Label: string(c)}
}

// IsKnown reports whether c is one of the five defined categories.
func (c Category) IsKnown() bool {
	_, ok := categoryInfo[c]
	return ok
}

// IsConfigurable reports whether c may carry a rule set.
func (c Category) IsConfigurable() bool {
	for _, p := range PriorityOrder {
		if p == c {
			return true
		}
	}
	return false
}

// ParseCategory converts a user supplied label into a configurable category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsConfigurable() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}
