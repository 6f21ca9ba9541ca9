// Package contacts provides test fixtures and a fluent builder for seeding
// contacts into a test database.
//
// Example usage:
//
//	seeded := contacts.NewBuilder(t).
//		WithFixture(contacts.FixtureOnePerCategory).
//		With("Dana", 9, 9, 9, tags.GrowthEngine).
//		Build(ctx, store)
package contacts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/service"
)

// Builder accumulates contacts for a test. IDs are deterministic
// ("contact-1", "contact-2", ...) so assertions can refer to them.
type Builder struct {
	t        *testing.T
	contacts []model.Contact
}

// NewBuilder returns an empty builder bound to t.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// With adds one contact scored (x, y, z).
func (b *Builder) With(name string, x, y, z float64, tagIDs ...string) *Builder {
	b.t.Helper()
	score := model.ScoreVector{X: x, Y: y, Z: z}
	if err := score.Validate(); err != nil {
		b.t.Fatalf("invalid test contact %q: %v", name, err)
	}

	created := time.Date(2024, 1, 1, 0, 0, len(b.contacts), 0, time.UTC)
	b.contacts = append(b.contacts, model.Contact{
		ID:        fmt.Sprintf("contact-%d", len(b.contacts)+1),
		Name:      name,
		Score:     score,
		Tags:      append([]string(nil), tagIDs...),
		Category:  classification.Classify(score, nil),
		CreatedAt: created,
		UpdatedAt: created,
	})
	return b
}

// WithFixture adds every contact from a predefined set.
func (b *Builder) WithFixture(f Fixture) *Builder {
	b.t.Helper()
	for _, spec := range f {
		b.With(spec.Name, spec.Score.X, spec.Score.Y, spec.Score.Z, spec.Tags...)
	}
	return b
}

// Contacts returns copies of the accumulated contacts without saving them.
func (b *Builder) Contacts() []model.Contact {
	out := make([]model.Contact, len(b.contacts))
	copy(out, b.contacts)
	return out
}

// Build saves every contact to storage, failing the test on error.
func (b *Builder) Build(ctx context.Context, storage service.Storage) []model.Contact {
	b.t.Helper()
	out := b.Contacts()
	for i := range out {
		if err := storage.SaveContact(ctx, &out[i]); err != nil {
			b.t.Fatalf("failed to seed contact %q: %v", out[i].Name, err)
		}
	}
	return out
}
