package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidKey is returned for predicate keys other than the six known ones.
var ErrInvalidKey = errors.New("invalid predicate key")

// Axis names one dimension of a ScoreVector.
type Axis string

// Axis constants.
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Axes lists the axes in canonical order.
var Axes = []Axis{AxisX, AxisY, AxisZ}

// Bound selects which side of an axis a predicate constrains.
type Bound string

// Bound constants.
const (
	BoundMin Bound = "Min"
	BoundMax Bound = "Max"
)

// PredicateKey identifies one of the six predicate kinds, e.g. xMin or zMax.
type PredicateKey struct {
	Axis  Axis
	Bound Bound
}

// The six recognised predicate keys.
var (
	KeyXMin = PredicateKey{AxisX, BoundMin}
	KeyXMax = PredicateKey{AxisX, BoundMax}
	KeyYMin = PredicateKey{AxisY, BoundMin}
	KeyYMax = PredicateKey{AxisY, BoundMax}
	KeyZMin = PredicateKey{AxisZ, BoundMin}
	KeyZMax = PredicateKey{AxisZ, BoundMax}
)

// PredicateKeys lists every key in canonical order.
var PredicateKeys = []PredicateKey{KeyXMin, KeyXMax, KeyYMin, KeyYMax, KeyZMin, KeyZMax}

func (k PredicateKey) String() string {
	return string(k.Axis) + string(k.Bound)
}

// ParsePredicateKey parses keys of the form xMin, yMax and so on.
func ParsePredicateKey(s string) (PredicateKey, error) {
	for _, k := range PredicateKeys {
		if k.String() == s {
			return k, nil
		}
	}
	return PredicateKey{}, fmt.Errorf("%w: %q (want one of xMin, xMax, yMin, yMax, zMin, zMax)", ErrInvalidKey, s)
}

// Predicate is a single inclusive bound on one axis.
type Predicate struct {
	Key   PredicateKey
	Value float64
}

// Holds reports whether v satisfies the predicate. Keys on an unknown axis
// are ignored and always hold.
func (p Predicate) Holds(v ScoreVector) bool {
	c, ok := v.Component(p.Key.Axis)
	if !ok {
		return true
	}
	switch p.Key.Bound {
	case BoundMin:
		return c >= p.Value
	case BoundMax:
		return c <= p.Value
	}
	// Unrecognised bounds are treated as satisfied.
	return true
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s=%g", p.Key, p.Value)
}

// RuleSet is the conjunction of predicates that defines one category.
// An empty RuleSet matches every vector.
type RuleSet map[PredicateKey]float64

// Predicates returns the predicates in canonical key order.
func (rs RuleSet) Predicates() []Predicate {
	preds := make([]Predicate, 0, len(rs))
	for _, k := range PredicateKeys {
		if v, ok := rs[k]; ok {
			preds = append(preds, Predicate{Key: k, Value: v})
		}
	}
	return preds
}

// Matches reports whether every predicate in the set holds for v.
func (rs RuleSet) Matches(v ScoreVector) bool {
	for k, bound := range rs {
		if !(Predicate{Key: k, Value: bound}).Holds(v) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for k, v := range rs {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets carry the same keys and bounds.
func (rs RuleSet) Equal(other RuleSet) bool {
	if len(rs) != len(other) {
		return false
	}
	for k, v := range rs {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (rs RuleSet) toStringMap() map[string]float64 {
	m := make(map[string]float64, len(rs))
	for k, v := range rs {
		m[k.String()] = v
	}
	return m
}

func ruleSetFromStringMap(m map[string]float64) RuleSet {
	rs := make(RuleSet, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, raw := range keys {
		k, err := ParsePredicateKey(raw)
		if err != nil {
			slog.Debug("ignoring unknown predicate key", "key", raw)
			continue
		}
		rs[k] = m[raw]
	}
	return rs
}

// MarshalJSON encodes the set as {"xMin": 7, ...}.
func (rs RuleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.toStringMap())
}

// UnmarshalJSON decodes {"xMin": 7, ...}, skipping keys it does not recognise.
func (rs *RuleSet) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to decode rule set: %w", err)
	}
	*rs = ruleSetFromStringMap(m)
	return nil
}

// MarshalYAML encodes the set as a mapping of key to bound.
func (rs RuleSet) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range rs.Predicates() {
		var key, val yaml.Node
		if err := key.Encode(p.Key.String()); err != nil {
			return nil, err
		}
		if err := val.Encode(p.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping of key to bound, skipping unknown keys.
func (rs *RuleSet) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]float64
	if err := value.Decode(&m); err != nil {
		return fmt.Errorf("failed to decode rule set: %w", err)
	}
	*rs = ruleSetFromStringMap(m)
	return nil
}
