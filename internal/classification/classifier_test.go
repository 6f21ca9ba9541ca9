package classification

import (
	"testing"

	"github.com/Veraticus/social-capital/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// defaultTable is the documented default written out literally so the tests
// do not depend on model.DefaultThresholds staying correct.
func defaultTable() *model.Thresholds {
	return &model.Thresholds{
		Version: 1,
		Rules: map[model.Category]model.RuleSet{
			model.CategoryCorePower:        {model.KeyXMin: 7, model.KeyYMin: 7, model.KeyZMin: 7},
			model.CategoryStrategicGoal:    {model.KeyXMin: 7, model.KeyYMin: 7, model.KeyZMax: 4},
			model.CategoryExecutionForce:   {model.KeyXMin: 7, model.KeyZMin: 7, model.KeyYMax: 5},
			model.CategoryPrestigeLeverage: {model.KeyYMin: 7, model.KeyXMax: 5},
		},
	}
}

func TestClassify_DefaultTable(t *testing.T) {
	tests := []struct {
		name string
		want model.Category
		v    model.ScoreVector
	}{
		{name: "core power on every bound", v: model.ScoreVector{X: 7, Y: 7, Z: 7}, want: model.CategoryCorePower},
		{name: "core power at maximum", v: model.ScoreVector{X: 10, Y: 10, Z: 10}, want: model.CategoryCorePower},
		// x=6.9 fails xMin:7 for CORE_POWER, STRATEGIC_GOAL and EXECUTION_FORCE,
		// and fails xMax:5 for PRESTIGE_LEVERAGE.
		{name: "x just below core power", v: model.ScoreVector{X: 6.9, Y: 7, Z: 7}, want: model.CategoryOthers},
		{name: "strategic goal on zMax bound", v: model.ScoreVector{X: 7, Y: 7, Z: 4}, want: model.CategoryStrategicGoal},
		{name: "strategic goal low access", v: model.ScoreVector{X: 9, Y: 8, Z: 1}, want: model.CategoryStrategicGoal},
		{name: "z between strategic and core", v: model.ScoreVector{X: 8, Y: 8, Z: 5}, want: model.CategoryOthers},
		{name: "execution force on yMax bound", v: model.ScoreVector{X: 7, Y: 5, Z: 7}, want: model.CategoryExecutionForce},
		{name: "execution force low energy", v: model.ScoreVector{X: 8, Y: 2, Z: 9}, want: model.CategoryExecutionForce},
		{name: "y between execution and core", v: model.ScoreVector{X: 8, Y: 6, Z: 9}, want: model.CategoryOthers},
		{name: "prestige leverage on bounds", v: model.ScoreVector{X: 5, Y: 7, Z: 0}, want: model.CategoryPrestigeLeverage},
		{name: "prestige leverage any access", v: model.ScoreVector{X: 0, Y: 10, Z: 10}, want: model.CategoryPrestigeLeverage},
		{name: "x just above prestige max", v: model.ScoreVector{X: 5.01, Y: 9, Z: 9}, want: model.CategoryOthers},
		{name: "origin", v: model.ScoreVector{}, want: model.CategoryOthers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.v, defaultTable()))
		})
	}
}

func TestClassify_NilUsesDefaults(t *testing.T) {
	assert.Equal(t, model.CategoryCorePower, Classify(model.ScoreVector{X: 7, Y: 7, Z: 7}, nil))
	assert.Equal(t, model.CategoryOthers, Classify(model.ScoreVector{X: 6.9, Y: 7, Z: 7}, nil))
}

func TestClassify_PriorityExclusivity(t *testing.T) {
	// Every category matches everything; the highest priority must win.
	all := &model.Thresholds{Rules: map[model.Category]model.RuleSet{
		model.CategoryCorePower:        {model.KeyXMin: 0},
		model.CategoryStrategicGoal:    {model.KeyXMin: 0},
		model.CategoryExecutionForce:   {model.KeyXMin: 0},
		model.CategoryPrestigeLeverage: {model.KeyXMin: 0},
	}}
	assert.Equal(t, model.CategoryCorePower, Classify(model.ScoreVector{X: 3, Y: 3, Z: 3}, all))

	// Drop the top priority and the next one takes over.
	delete(all.Rules, model.CategoryCorePower)
	assert.Equal(t, model.CategoryStrategicGoal, Classify(model.ScoreVector{X: 3, Y: 3, Z: 3}, all))

	// Overlap between the two lowest priorities only.
	overlap := &model.Thresholds{Rules: map[model.Category]model.RuleSet{
		model.CategoryExecutionForce:   {model.KeyYMax: 8},
		model.CategoryPrestigeLeverage: {model.KeyYMin: 2},
	}}
	assert.Equal(t, model.CategoryExecutionForce, Classify(model.ScoreVector{Y: 5}, overlap))
}

func TestClassify_EmptyRuleSetMatchesEverything(t *testing.T) {
	th := &model.Thresholds{Rules: map[model.Category]model.RuleSet{
		model.CategoryCorePower: {},
	}}

	for _, v := range []model.ScoreVector{{}, {X: 10, Y: 10, Z: 10}, {X: 2, Y: 9, Z: 4}} {
		assert.Equal(t, model.CategoryCorePower, Classify(v, th), "vector %v", v)
	}
}

func TestClassify_AbsentRuleSetIsSkipped(t *testing.T) {
	th := &model.Thresholds{Rules: map[model.Category]model.RuleSet{
		model.CategoryPrestigeLeverage: {model.KeyYMin: 7},
	}}

	assert.Equal(t, model.CategoryPrestigeLeverage, Classify(model.ScoreVector{X: 9, Y: 9, Z: 9}, th))
	assert.Equal(t, model.CategoryOthers, Classify(model.ScoreVector{X: 9, Y: 6, Z: 9}, th))

	empty := &model.Thresholds{}
	assert.Equal(t, model.CategoryOthers, Classify(model.ScoreVector{X: 9, Y: 9, Z: 9}, empty))
}

func TestClassify_FallbackTotality(t *testing.T) {
	th := defaultTable()
	for x := 0.0; x <= 10; x += 0.5 {
		for y := 0.0; y <= 10; y += 0.5 {
			for z := 0.0; z <= 10; z += 0.5 {
				v := model.ScoreVector{X: x, Y: y, Z: z}
				got := Classify(v, th)

				matched := false
				for _, c := range model.PriorityOrder {
					if th.Rules[c].Matches(v) {
						matched = true
						require.Equal(t, c, got, "vector %v", v)
						break
					}
				}
				if !matched {
					require.Equal(t, model.CategoryOthers, got, "vector %v", v)
				}
			}
		}
	}
}

func TestClassify_OutOfRangeDoesNotPanic(t *testing.T) {
	th := defaultTable()
	assert.Equal(t, model.CategoryCorePower, Classify(model.ScoreVector{X: 42, Y: 99, Z: 11}, th))
	assert.Equal(t, model.CategoryOthers, Classify(model.ScoreVector{X: -5, Y: -5, Z: -5}, th))
}

func TestClassify_UnknownKeysIgnored(t *testing.T) {
	unknownAxis := model.PredicateKey{Axis: "w", Bound: model.BoundMin}
	unknownBound := model.PredicateKey{Axis: model.AxisX, Bound: "avg"}

	tests := []struct {
		name  string
		rules model.RuleSet
		v     model.ScoreVector
		want  model.Category
	}{
		{
			name:  "only unknown key behaves like empty rule set",
			rules: model.RuleSet{unknownAxis: 1},
			v:     model.ScoreVector{X: 1, Y: 1, Z: 1},
			want:  model.CategoryCorePower,
		},
		{
			name:  "unknown keys do not mask known failures",
			rules: model.RuleSet{unknownAxis: 1, unknownBound: 9, model.KeyXMin: 7},
			v:     model.ScoreVector{X: 1, Y: 1, Z: 1},
			want:  model.CategoryOthers,
		},
		{
			name:  "known keys still decide",
			rules: model.RuleSet{unknownAxis: 1, model.KeyXMin: 7},
			v:     model.ScoreVector{X: 8, Y: 1, Z: 1},
			want:  model.CategoryCorePower,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := &model.Thresholds{Rules: map[model.Category]model.RuleSet{model.CategoryCorePower: tt.rules}}
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, Classify(tt.v, th))
			})
			assert.NotPanics(t, func() { _ = Explain(tt.v, th) })
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	th := defaultTable()
	v := model.ScoreVector{X: 8, Y: 3, Z: 8}
	first := Classify(v, th)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(v, th))
	}
	assert.True(t, th.Equal(defaultTable()), "Classify must not mutate thresholds")
}

func TestReclassify(t *testing.T) {
	contacts := []model.Contact{
		{ID: "a", Score: model.ScoreVector{X: 9, Y: 9, Z: 9}, Category: model.CategoryCorePower},
		{ID: "b", Score: model.ScoreVector{X: 9, Y: 9, Z: 2}, Category: model.CategoryOthers},
		{ID: "c", Score: model.ScoreVector{X: 1, Y: 1, Z: 1}, Category: model.CategoryOthers},
	}

	changed := Reclassify(contacts, defaultTable())
	require.Len(t, changed, 1)
	assert.Equal(t, "b", changed[0].ID)
	assert.Equal(t, model.CategoryStrategicGoal, contacts[1].Category)

	raised := defaultTable()
	raised.Set(model.CategoryCorePower, model.KeyXMin, 9.5)
	changed = Reclassify(contacts, raised)
	require.Len(t, changed, 1)
	assert.Equal(t, "a", changed[0].ID)

	for _, c := range contacts {
		assert.Equal(t, Classify(c.Score, raised), c.Category)
	}
}

func TestExplain(t *testing.T) {
	v := model.ScoreVector{X: 8, Y: 8, Z: 3}
	evals := Explain(v, defaultTable())
	require.Len(t, evals, len(model.PriorityOrder))

	assert.Equal(t, model.CategoryCorePower, evals[0].Category)
	assert.False(t, evals[0].Matched)
	require.Len(t, evals[0].Failed, 1)
	assert.Equal(t, model.KeyZMin, evals[0].Failed[0].Key)

	assert.True(t, evals[1].Matched)
	assert.True(t, evals[1].Selected)

	selected := 0
	for _, e := range evals {
		if e.Selected {
			selected++
			assert.Equal(t, Classify(v, defaultTable()), e.Category)
		}
	}
	assert.Equal(t, 1, selected)

	partial := &model.Thresholds{Rules: map[model.Category]model.RuleSet{
		model.CategoryExecutionForce: {},
	}}
	evals = Explain(v, partial)
	assert.False(t, evals[0].Configured)
	assert.True(t, evals[2].Configured)
	assert.True(t, evals[2].Selected)
}
