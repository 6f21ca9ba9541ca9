// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
	"math"
)

// Score bounds shared by all three axes.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// ErrInvalidScore is returned when a score falls outside [MinScore, MaxScore].
var ErrInvalidScore = errors.New("invalid score")

// ScoreVector places a contact in the three-dimensional scoring space.
type ScoreVector struct {
	X float64 `json:"x" yaml:"x"` // value relevance
	Y float64 `json:"y" yaml:"y"` // energy level
	Z float64 `json:"z" yaml:"z"` // accessibility
}

// Component returns the value of the vector on the given axis.
func (v ScoreVector) Component(axis Axis) (float64, bool) {
	switch axis {
	case AxisX:
		return v.X, true
	case AxisY:
		return v.Y, true
	case AxisZ:
		return v.Z, true
	}
	return 0, false
}

// Validate ensures every component is a number within the closed score range.
func (v ScoreVector) Validate() error {
	for _, axis := range Axes {
		c, _ := v.Component(axis)
		if math.IsNaN(c) || c < MinScore || c > MaxScore {
			return fmt.Errorf("%w: %s=%v must be between %v and %v", ErrInvalidScore, axis, c, MinScore, MaxScore)
		}
	}
	return nil
}
