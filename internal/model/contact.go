package model

import "time"

// Contact is a person tracked in the network.
// Category is derived from Score and the current thresholds and is never
// set directly by callers.
type Contact struct {
	CreatedAt    time.Time   `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at" yaml:"updated_at,omitempty"`
	ID           string      `json:"id" yaml:"id,omitempty"`
	Name         string      `json:"name" yaml:"name"`
	Note         string      `json:"note,omitempty" yaml:"note,omitempty"`
	ValueProvide string      `json:"value_provide,omitempty" yaml:"value_provide,omitempty"`
	ValueReceive string      `json:"value_receive,omitempty" yaml:"value_receive,omitempty"`
	Category     Category    `json:"category" yaml:"category,omitempty"`
	Tags         []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Score        ScoreVector `json:"score" yaml:"score"`
}

// HasTag reports whether the contact carries the given tag.
func (c Contact) HasTag(tagID string) bool {
	for _, t := range c.Tags {
		if t == tagID {
			return true
		}
	}
	return false
}
