package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/insight"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/service"
	"github.com/google/uuid"
)

// ErrEmptyName is returned when a contact has no name.
var ErrEmptyName = errors.New("contact name is required")

// ContactInput holds the user-editable fields of a contact. Category is
// never accepted from callers; it is always derived from Score.
type ContactInput struct {
	Name         string            `json:"name" yaml:"name"`
	Note         string            `json:"note,omitempty" yaml:"note,omitempty"`
	ValueProvide string            `json:"value_provide,omitempty" yaml:"value_provide,omitempty"`
	ValueReceive string            `json:"value_receive,omitempty" yaml:"value_receive,omitempty"`
	Tags         []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Score        model.ScoreVector `json:"score" yaml:"score"`
}

// InputFrom returns the editable fields of c.
func InputFrom(c model.Contact) ContactInput {
	return ContactInput{
		Name:         c.Name,
		Note:         c.Note,
		ValueProvide: c.ValueProvide,
		ValueReceive: c.ValueReceive,
		Tags:         append([]string(nil), c.Tags...),
		Score:        c.Score,
	}
}

func (e *Engine) validateInput(in *ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrEmptyName
	}
	if err := in.Score.Validate(); err != nil {
		return err
	}
	in.Tags = dedupeTags(in.Tags)
	return e.catalog.Validate(in.Tags)
}

func dedupeTags(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// AddContact validates in, assigns an id, classifies, and stores the contact.
func (e *Engine) AddContact(ctx context.Context, in ContactInput) (*model.Contact, error) {
	if err := e.validateInput(&in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	contact := e.newContact(in)
	err := e.withTx(ctx, func(tx service.Transaction) error {
		return tx.SaveContact(ctx, contact)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add contact: %w", err)
	}
	return contact, nil
}

// ImportContacts adds every input in a single transaction. Inputs are
// validated up front; one bad entry rejects the whole batch.
func (e *Engine) ImportContacts(ctx context.Context, inputs []ContactInput, progress func(done, total int)) ([]model.Contact, error) {
	for i := range inputs {
		if err := e.validateInput(&inputs[i]); err != nil {
			return nil, fmt.Errorf("contact %d (%q): %w", i+1, inputs[i].Name, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	contacts := make([]model.Contact, len(inputs))
	for i, in := range inputs {
		contacts[i] = *e.newContact(in)
	}

	err := e.withTx(ctx, func(tx service.Transaction) error {
		for i := range contacts {
			if err := tx.SaveContact(ctx, &contacts[i]); err != nil {
				return err
			}
			if progress != nil {
				progress(i+1, len(contacts))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import contacts: %w", err)
	}
	return contacts, nil
}

func (e *Engine) newContact(in ContactInput) *model.Contact {
	now := e.now()
	return &model.Contact{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Note:         in.Note,
		ValueProvide: in.ValueProvide,
		ValueReceive: in.ValueReceive,
		Tags:         in.Tags,
		Score:        in.Score,
		Category:     classification.Classify(in.Score, e.current),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateContact replaces the editable fields of an existing contact and
// re-classifies it.
func (e *Engine) UpdateContact(ctx context.Context, id string, in ContactInput) (*model.Contact, error) {
	if err := e.validateInput(&in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var updated *model.Contact
	err := e.withTx(ctx, func(tx service.Transaction) error {
		existing, err := tx.GetContact(ctx, id)
		if err != nil {
			return err
		}
		existing.Name = in.Name
		existing.Note = in.Note
		existing.ValueProvide = in.ValueProvide
		existing.ValueReceive = in.ValueReceive
		existing.Tags = in.Tags
		existing.Score = in.Score
		existing.Category = classification.Classify(in.Score, e.current)
		if err := tx.SaveContact(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update contact %s: %w", id, err)
	}
	return updated, nil
}

// DeleteContact removes a contact.
func (e *Engine) DeleteContact(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.withTx(ctx, func(tx service.Transaction) error {
		return tx.DeleteContact(ctx, id)
	}); err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", id, err)
	}
	return nil
}

// Contact returns one contact. The stored category is only a cache, so it
// is recomputed against the active configuration.
func (e *Engine) Contact(ctx context.Context, id string) (*model.Contact, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, err := e.store.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Category = classification.Classify(c.Score, e.current)
	return c, nil
}

// Contacts returns every contact with its category recomputed.
func (e *Engine) Contacts(ctx context.Context) ([]model.Contact, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.contactsLocked(ctx)
}

func (e *Engine) contactsLocked(ctx context.Context) ([]model.Contact, error) {
	contacts, err := e.store.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	for i := range contacts {
		contacts[i].Category = classification.Classify(contacts[i].Score, e.current)
	}
	return contacts, nil
}

// Explain reports how each category's rules evaluate for a stored contact.
func (e *Engine) Explain(ctx context.Context, id string) (*model.Contact, []classification.Evaluation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, err := e.store.GetContact(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	c.Category = classification.Classify(c.Score, e.current)
	return c, classification.Explain(c.Score, e.current), nil
}

// Dashboard summarises the network and runs the insight checks.
func (e *Engine) Dashboard(ctx context.Context) (insight.Report, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	contacts, err := e.contactsLocked(ctx)
	if err != nil {
		return insight.Report{}, err
	}
	return insight.Analyze(contacts, e.catalog), nil
}
