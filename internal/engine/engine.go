// Package engine owns the active threshold configuration and keeps every
// stored contact's category consistent with it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/common"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/service"
	"github.com/Veraticus/social-capital/internal/tags"
)

// ErrInvalidThresholdValue is returned for NaN or infinite bounds.
var ErrInvalidThresholdValue = errors.New("invalid threshold value")

// Engine serialises threshold mutations and contact writes so that no reader
// ever sees a configuration whose re-classification pass has not been persisted.
type Engine struct {
	store   service.Storage
	catalog *tags.Catalog
	current *model.Thresholds
	now     func() time.Time
	retry   service.RetryOptions
	mu      sync.RWMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithRetryOptions overrides the retry policy for storage writes.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(e *Engine) {
		e.retry = opts
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New loads the persisted configuration, seeding the defaults on first run,
// and reconciles cached contact categories against it.
func New(ctx context.Context, store service.Storage, catalog *tags.Catalog, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: storage is required", common.ErrMissingConfig)
	}
	if catalog == nil {
		catalog = tags.Default()
	}

	e := &Engine{
		store:   store,
		catalog: catalog,
		retry:   common.DefaultStorageRetry,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	current, err := store.GetThresholds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load thresholds: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if current == nil {
		current = model.DefaultThresholds()
		current.UpdatedAt = e.now()
		slog.Info("Seeding default thresholds", "version", current.Version)
		if _, err := e.commit(ctx, current, true); err != nil {
			return nil, err
		}
	} else if _, err := e.commit(ctx, current, false); err != nil {
		return nil, err
	}

	e.current = current
	e.warnEmptyRuleSets(current)
	return e, nil
}

// Catalog returns the tag catalog contacts are validated against.
func (e *Engine) Catalog() *tags.Catalog {
	return e.catalog
}

// Thresholds returns a copy of the active configuration.
func (e *Engine) Thresholds(_ context.Context) *model.Thresholds {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current.Clone()
}

// UpdateValue sets category's bound for key, adding it if missing.
func (e *Engine) UpdateValue(ctx context.Context, category model.Category, key string, value float64) (*model.Thresholds, error) {
	pk, err := validateRuleTarget(category, key)
	if err != nil {
		return nil, err
	}
	if err := validateBound(category, pk, value); err != nil {
		return nil, err
	}

	return e.mutate(ctx, "update", func(t *model.Thresholds) bool {
		if rs, ok := t.RuleSet(category); ok {
			if old, ok := rs[pk]; ok && old == value {
				return false
			}
		}
		t.Set(category, pk, value)
		return true
	})
}

// AddRule is UpdateValue under the name the threshold editor uses for new bounds.
func (e *Engine) AddRule(ctx context.Context, category model.Category, key string, value float64) (*model.Thresholds, error) {
	return e.UpdateValue(ctx, category, key, value)
}

// RemoveRule deletes key from category. Removing a key that is not set
// returns the current configuration unchanged.
func (e *Engine) RemoveRule(ctx context.Context, category model.Category, key string) (*model.Thresholds, error) {
	pk, err := validateRuleTarget(category, key)
	if err != nil {
		return nil, err
	}

	return e.mutate(ctx, "remove", func(t *model.Thresholds) bool {
		return t.Remove(category, pk)
	})
}

// Reset restores the default configuration under a new version number.
func (e *Engine) Reset(ctx context.Context) (*model.Thresholds, error) {
	return e.mutate(ctx, "reset", func(t *model.Thresholds) bool {
		t.Rules = model.DefaultThresholds().Rules
		return true
	})
}

// Replace swaps in a complete rule set, as read from an exported document.
// Version and timestamps on the input are ignored.
func (e *Engine) Replace(ctx context.Context, in *model.Thresholds) (*model.Thresholds, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: thresholds are required", common.ErrInvalidConfig)
	}
	for c, rs := range in.Rules {
		if !c.IsConfigurable() {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, c)
		}
		for k, v := range rs {
			if err := validateBound(c, k, v); err != nil {
				return nil, err
			}
		}
	}

	rules := in.Clone().Rules
	return e.mutate(ctx, "replace", func(t *model.Thresholds) bool {
		if t.Equal(&model.Thresholds{Rules: rules}) {
			return false
		}
		t.Rules = rules
		return true
	})
}

// History returns persisted configuration versions, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]model.Thresholds, error) {
	history, err := e.store.GetThresholdHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load threshold history: %w", err)
	}
	return history, nil
}

// Reclassify runs an explicit full pass over every stored contact and
// persists any category that drifted. progress, if set, is called once per
// contact examined.
func (e *Engine) Reclassify(ctx context.Context, progress func(done, total int)) ([]model.Contact, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var changed []model.Contact
	err := e.withTx(ctx, func(tx service.Transaction) error {
		contacts, err := tx.ListContacts(ctx)
		if err != nil {
			return err
		}
		changed = changed[:0]
		for i := range contacts {
			c := classification.Classify(contacts[i].Score, e.current)
			if c != contacts[i].Category {
				contacts[i].Category = c
				changed = append(changed, contacts[i])
			}
			if progress != nil {
				progress(i+1, len(contacts))
			}
		}
		return tx.UpdateContactCategories(ctx, changed)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reclassify contacts: %w", err)
	}

	slog.Info("Reclassified contacts", "changed", len(changed), "version", e.current.Version)
	return changed, nil
}

// mutate applies fn to a copy of the active configuration. If fn reports a
// change the copy gets the next version, every contact is re-classified, and
// configuration plus changed categories are persisted in one transaction.
func (e *Engine) mutate(ctx context.Context, op string, fn func(*model.Thresholds) bool) (*model.Thresholds, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.current.Clone()
	if !fn(next) {
		common.LogDebug("Threshold mutation had no effect", common.Fields{
			"op":      op,
			"version": e.current.Version,
		})
		return e.current.Clone(), nil
	}
	next.Version = e.current.Version + 1
	next.UpdatedAt = e.now()

	changed, err := e.commit(ctx, next, true)
	if err != nil {
		common.LogError(err, "Threshold change rolled back", common.Fields{
			"op":      op,
			"version": e.current.Version,
		})
		return nil, err
	}

	e.current = next
	common.LogInfo("Thresholds updated", common.Fields{
		"op":           op,
		"version":      next.Version,
		"reclassified": changed,
	})
	e.warnEmptyRuleSets(next)
	return next.Clone(), nil
}

// commit re-classifies all contacts against t and persists the result.
// When saveConfig is false only drifted categories are written.
func (e *Engine) commit(ctx context.Context, t *model.Thresholds, saveConfig bool) (int, error) {
	var changed int
	err := e.withTx(ctx, func(tx service.Transaction) error {
		contacts, err := tx.ListContacts(ctx)
		if err != nil {
			return err
		}
		drifted := classification.Reclassify(contacts, t)
		changed = len(drifted)

		if saveConfig {
			if err := tx.SaveThresholds(ctx, t); err != nil {
				return err
			}
		}
		return tx.UpdateContactCategories(ctx, drifted)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to persist thresholds version %d: %w", t.Version, err)
	}
	return changed, nil
}

// withTx runs fn in a storage transaction, retrying the whole unit on
// transient lock errors.
func (e *Engine) withTx(ctx context.Context, fn func(service.Transaction) error) error {
	return common.WithRetry(ctx, func() error {
		tx, err := e.store.BeginTx(ctx)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("failed to rollback transaction", "error", rbErr)
			}
			return err
		}
		return tx.Commit()
	}, e.retry)
}

func (e *Engine) warnEmptyRuleSets(t *model.Thresholds) {
	for _, c := range t.EmptyRuleSets() {
		common.LogWarn("Category has no rules and matches every contact", common.Fields{
			"category": c,
			"version":  t.Version,
		})
	}
}

// validateBound rejects bounds that cannot be compared or persisted.
func validateBound(category model.Category, key model.PredicateKey, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s.%s=%v", ErrInvalidThresholdValue, category, key, value)
	}
	return nil
}

func validateRuleTarget(category model.Category, key string) (model.PredicateKey, error) {
	if !category.IsConfigurable() {
		return model.PredicateKey{}, fmt.Errorf("%w: %q", model.ErrInvalidCategory, category)
	}
	return model.ParsePredicateKey(key)
}
