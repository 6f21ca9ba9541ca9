// Package classification maps contact scores to strategic categories.
package classification

import (
	"github.com/Veraticus/social-capital/internal/model"
)

// Classify returns the first category in model.PriorityOrder whose rule set
// is fully satisfied by v, or model.CategoryOthers when none is.
// Categories absent from t are skipped. A nil t classifies against the defaults.
func Classify(v model.ScoreVector, t *model.Thresholds) model.Category {
	if t == nil {
		t = model.DefaultThresholds()
	}
	for _, c := range model.PriorityOrder {
		rs, ok := t.RuleSet(c)
		if !ok {
			continue
		}
		if rs.Matches(v) {
			return c
		}
	}
	return model.CategoryOthers
}

// Reclassify recomputes the category of every contact in place and returns
// copies of the contacts whose category changed.
func Reclassify(contacts []model.Contact, t *model.Thresholds) []model.Contact {
	var changed []model.Contact
	for i := range contacts {
		c := Classify(contacts[i].Score, t)
		if c != contacts[i].Category {
			contacts[i].Category = c
			changed = append(changed, contacts[i])
		}
	}
	return changed
}

// Evaluation records how one category's rules fared against a vector.
type Evaluation struct {
	Category   model.Category
	Failed     []model.Predicate
	Configured bool
	Matched    bool
	Selected   bool
}

// Explain evaluates every configurable category against v in priority order.
// Unlike Classify it does not stop at the first match; exactly one entry at
// most has Selected set, and it agrees with Classify.
func Explain(v model.ScoreVector, t *model.Thresholds) []Evaluation {
	if t == nil {
		t = model.DefaultThresholds()
	}
	evals := make([]Evaluation, 0, len(model.PriorityOrder))
	selected := false
	for _, c := range model.PriorityOrder {
		e := Evaluation{Category: c}
		rs, ok := t.RuleSet(c)
		if ok {
			e.Configured = true
			for _, p := range rs.Predicates() {
				if !p.Holds(v) {
					e.Failed = append(e.Failed, p)
				}
			}
			e.Matched = len(e.Failed) == 0
			if e.Matched && !selected {
				e.Selected = true
				selected = true
			}
		}
		evals = append(evals, e)
	}
	return evals
}
