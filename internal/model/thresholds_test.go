package model

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultThresholds(t *testing.T) {
	d := DefaultThresholds()

	want := map[Category]RuleSet{
		CategoryCorePower:        {KeyXMin: 7, KeyYMin: 7, KeyZMin: 7},
		CategoryStrategicGoal:    {KeyXMin: 7, KeyYMin: 7, KeyZMax: 4},
		CategoryExecutionForce:   {KeyXMin: 7, KeyZMin: 7, KeyYMax: 5},
		CategoryPrestigeLeverage: {KeyYMin: 7, KeyXMax: 5},
	}
	for c, rs := range want {
		got, ok := d.RuleSet(c)
		if !ok {
			t.Fatalf("default missing %s", c)
		}
		if !got.Equal(rs) {
			t.Errorf("%s = %v, want %v", c, got, rs)
		}
	}
	if _, ok := d.RuleSet(CategoryOthers); ok {
		t.Error("OTHERS must never carry rules")
	}

	// Each call returns an independent value.
	d.Set(CategoryCorePower, KeyXMin, 1)
	if v := DefaultThresholds().Rules[CategoryCorePower][KeyXMin]; v != 7 {
		t.Errorf("default mutated through a previous copy: xMin = %v", v)
	}
}

func TestThresholds_CloneIsDeep(t *testing.T) {
	orig := DefaultThresholds()
	clone := orig.Clone()
	clone.Set(CategoryStrategicGoal, KeyZMax, 2)
	clone.Remove(CategoryPrestigeLeverage, KeyXMax)

	if orig.Rules[CategoryStrategicGoal][KeyZMax] != 4 {
		t.Error("clone shares rule set with original")
	}
	if _, ok := orig.Rules[CategoryPrestigeLeverage][KeyXMax]; !ok {
		t.Error("remove on clone affected original")
	}
	if orig.Equal(clone) {
		t.Error("Equal() = true after modifying clone")
	}
}

func TestThresholds_Remove(t *testing.T) {
	th := DefaultThresholds()

	if th.Remove(CategoryCorePower, KeyZMax) {
		t.Error("removing a missing key reported a change")
	}
	if !th.Remove(CategoryPrestigeLeverage, KeyYMin) {
		t.Error("removing an existing key reported no change")
	}
	if !th.Remove(CategoryPrestigeLeverage, KeyXMax) {
		t.Error("removing an existing key reported no change")
	}

	empty := th.EmptyRuleSets()
	if len(empty) != 1 || empty[0] != CategoryPrestigeLeverage {
		t.Errorf("EmptyRuleSets() = %v, want [PRESTIGE_LEVERAGE]", empty)
	}
}

func TestScoreVector_Validate(t *testing.T) {
	tests := []struct {
		name    string
		v       ScoreVector
		wantErr bool
	}{
		{"origin", ScoreVector{}, false},
		{"upper corner", ScoreVector{X: 10, Y: 10, Z: 10}, false},
		{"fractional", ScoreVector{X: 6.9, Y: 7, Z: 0.5}, false},
		{"negative x", ScoreVector{X: -0.1}, true},
		{"y too large", ScoreVector{Y: 10.5}, true},
		{"z NaN", ScoreVector{Z: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidScore) {
				t.Errorf("Validate() error = %v, want ErrInvalidScore", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range PriorityOrder {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	for _, bad := range []string{"OTHERS", "core_power", ""} {
		if _, err := ParseCategory(bad); !errors.Is(err, ErrInvalidCategory) {
			t.Errorf("ParseCategory(%q) error = %v, want ErrInvalidCategory", bad, err)
		}
	}
}
