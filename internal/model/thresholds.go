package model

import "time"

// Thresholds is the versioned rule configuration used to classify contacts.
// A category missing from Rules never matches; a category present with an
// empty RuleSet matches everything.
type Thresholds struct {
	UpdatedAt time.Time            `json:"updated_at" yaml:"updated_at,omitempty"`
	Rules     map[Category]RuleSet `json:"rules" yaml:"rules"`
	Version   int                  `json:"version" yaml:"version"`
}

// DefaultThresholds returns the configuration used on first run and on reset.
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		Version: 1,
		Rules: map[Category]RuleSet{
			CategoryCorePower:        {KeyXMin: 7, KeyYMin: 7, KeyZMin: 7},
			CategoryStrategicGoal:    {KeyXMin: 7, KeyYMin: 7, KeyZMax: 4},
			CategoryExecutionForce:   {KeyXMin: 7, KeyZMin: 7, KeyYMax: 5},
			CategoryPrestigeLeverage: {KeyYMin: 7, KeyXMax: 5},
		},
	}
}

// RuleSet returns the rules for c and whether c is configured at all.
func (t *Thresholds) RuleSet(c Category) (RuleSet, bool) {
	if t == nil || t.Rules == nil {
		return nil, false
	}
	rs, ok := t.Rules[c]
	return rs, ok
}

// Clone returns a deep copy.
func (t *Thresholds) Clone() *Thresholds {
	if t == nil {
		return nil
	}
	out := &Thresholds{
		Version:   t.Version,
		UpdatedAt: t.UpdatedAt,
		Rules:     make(map[Category]RuleSet, len(t.Rules)),
	}
	for c, rs := range t.Rules {
		out.Rules[c] = rs.Clone()
	}
	return out
}

// Equal compares rules only; version and timestamps are ignored.
func (t *Thresholds) Equal(other *Thresholds) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Rules) != len(other.Rules) {
		return false
	}
	for c, rs := range t.Rules {
		ors, ok := other.Rules[c]
		if !ok || !rs.Equal(ors) {
			return false
		}
	}
	return true
}

// EmptyRuleSets lists configured categories whose rule set is empty and
// therefore matches every contact, in priority order.
func (t *Thresholds) EmptyRuleSets() []Category {
	var out []Category
	for _, c := range PriorityOrder {
		if rs, ok := t.RuleSet(c); ok && len(rs) == 0 {
			out = append(out, c)
		}
	}
	return out
}

// Set upserts a bound for c. The caller is responsible for validating c.
func (t *Thresholds) Set(c Category, key PredicateKey, value float64) {
	if t.Rules == nil {
		t.Rules = make(map[Category]RuleSet)
	}
	rs, ok := t.Rules[c]
	if !ok {
		rs = make(RuleSet)
		t.Rules[c] = rs
	}
	rs[key] = value
}

// Remove deletes key from c's rules and reports whether anything changed.
func (t *Thresholds) Remove(c Category, key PredicateKey) bool {
	rs, ok := t.RuleSet(c)
	if !ok {
		return false
	}
	if _, ok := rs[key]; !ok {
		return false
	}
	delete(rs, key)
	return true
}
