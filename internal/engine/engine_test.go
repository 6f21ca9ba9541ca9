package engine

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/service"
	"github.com/Veraticus/social-capital/internal/testutil"
	"github.com/Veraticus/social-capital/internal/testutil/contacts"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     time.Millisecond,
}

func newTestEngine(t *testing.T, opts testutil.TestDBOptions) (*Engine, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDBWithOptions(t, opts)
	eng, err := New(context.Background(), db.Storage, nil, WithRetryOptions(testRetry))
	require.NoError(t, err)
	return eng, db
}

func seededEngine(t *testing.T) (*Engine, *testutil.TestDB) {
	t.Helper()
	return newTestEngine(t, testutil.TestDBOptions{
		Builder: contacts.NewBuilder(t).WithFixture(contacts.FixtureOnePerCategory),
	})
}

// requireConsistent asserts that every stored category, read straight from
// storage, equals a fresh classification under the engine's configuration.
func requireConsistent(t *testing.T, eng *Engine, db *testutil.TestDB) map[string]model.Category {
	t.Helper()
	cfg := eng.Thresholds(context.Background())
	stored, err := db.Storage.ListContacts(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	byName := make(map[string]model.Category, len(stored))
	for _, c := range stored {
		assert.Equal(t, classification.Classify(c.Score, cfg), c.Category,
			"stored category of %s is stale under version %d", c.Name, cfg.Version)
		byName[c.Name] = c.Category
	}
	return byName
}

func TestNew_SeedsDefaults(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	cfg := eng.Thresholds(ctx)
	assert.Equal(t, 1, cfg.Version)
	assert.True(t, cfg.Equal(model.DefaultThresholds()))

	stored, err := db.Storage.GetThresholds(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.Version)

	history, err := eng.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	requireConsistent(t, eng, db)
}

func TestNew_ReconcilesStaleCategories(t *testing.T) {
	custom := &model.Thresholds{
		Version: 7,
		Rules: map[model.Category]model.RuleSet{
			model.CategoryCorePower: {model.KeyXMin: 1},
		},
	}
	// Fixture categories are computed against the defaults, so every
	// contact with x >= 1 is stale under the saved configuration.
	eng, db := newTestEngine(t, testutil.TestDBOptions{
		Builder:    contacts.NewBuilder(t).WithFixture(contacts.FixtureOnePerCategory),
		Thresholds: custom,
	})

	assert.Equal(t, 7, eng.Thresholds(context.Background()).Version)
	cats := requireConsistent(t, eng, db)
	for name, c := range cats {
		assert.Equal(t, model.CategoryCorePower, c, name)
	}
}

func TestEngine_MutationsKeepCategoriesConsistent(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	cats := requireConsistent(t, eng, db)
	assert.Equal(t, model.CategoryCorePower, cats["Avery Core"])
	assert.Equal(t, model.CategoryPrestigeLeverage, cats["Casey Prestige"])

	cfg, err := eng.UpdateValue(ctx, model.CategoryCorePower, "xMin", 9)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Version)
	cats = requireConsistent(t, eng, db)
	assert.Equal(t, model.CategoryOthers, cats["Avery Core"])

	cfg, err = eng.AddRule(ctx, model.CategoryPrestigeLeverage, "zMin", 6)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Version)
	cats = requireConsistent(t, eng, db)
	assert.Equal(t, model.CategoryOthers, cats["Casey Prestige"])

	cfg, err = eng.RemoveRule(ctx, model.CategoryStrategicGoal, "zMax")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Version)
	cats = requireConsistent(t, eng, db)
	assert.Equal(t, model.CategoryStrategicGoal, cats["Avery Core"])

	cfg, err = eng.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Version)
	assert.True(t, cfg.Equal(model.DefaultThresholds()))
	cats = requireConsistent(t, eng, db)
	assert.Equal(t, model.CategoryCorePower, cats["Avery Core"])
	assert.Equal(t, model.CategoryPrestigeLeverage, cats["Casey Prestige"])

	history, err := eng.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, 5, history[0].Version)
	assert.Equal(t, 1, history[4].Version)
}

func TestEngine_NoOpMutations(t *testing.T) {
	eng, _ := seededEngine(t)
	ctx := context.Background()

	cfg, err := eng.RemoveRule(ctx, model.CategoryPrestigeLeverage, "zMin")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)

	cfg, err = eng.UpdateValue(ctx, model.CategoryCorePower, "xMin", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)

	history, err := eng.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestEngine_InvalidMutations(t *testing.T) {
	eng, _ := seededEngine(t)
	ctx := context.Background()

	tests := []struct {
		call    func() error
		wantErr error
		name    string
	}{
		{
			name: "unknown key",
			call: func() error {
				_, err := eng.UpdateValue(ctx, model.CategoryCorePower, "wMin", 1)
				return err
			},
			wantErr: model.ErrInvalidKey,
		},
		{
			name: "remove unknown key",
			call: func() error {
				_, err := eng.RemoveRule(ctx, model.CategoryCorePower, "xmin")
				return err
			},
			wantErr: model.ErrInvalidKey,
		},
		{
			name: "fallback category",
			call: func() error {
				_, err := eng.AddRule(ctx, model.CategoryOthers, "xMin", 1)
				return err
			},
			wantErr: model.ErrInvalidCategory,
		},
		{
			name: "unknown category",
			call: func() error {
				_, err := eng.AddRule(ctx, model.Category("VIP"), "xMin", 1)
				return err
			},
			wantErr: model.ErrInvalidCategory,
		},
		{
			name: "NaN bound",
			call: func() error {
				_, err := eng.UpdateValue(ctx, model.CategoryCorePower, "xMin", math.NaN())
				return err
			},
			wantErr: ErrInvalidThresholdValue,
		},
		{
			name: "replace with NaN bound",
			call: func() error {
				_, err := eng.Replace(ctx, &model.Thresholds{Rules: map[model.Category]model.RuleSet{
					model.CategoryCorePower: {model.KeyXMin: math.NaN()},
				}})
				return err
			},
			wantErr: ErrInvalidThresholdValue,
		},
		{
			name: "replace with infinite bound",
			call: func() error {
				_, err := eng.Replace(ctx, &model.Thresholds{Rules: map[model.Category]model.RuleSet{
					model.CategoryStrategicGoal: {model.KeyZMax: math.Inf(1)},
				}})
				return err
			},
			wantErr: ErrInvalidThresholdValue,
		},
		{
			name: "replace with fallback rules",
			call: func() error {
				_, err := eng.Replace(ctx, &model.Thresholds{Rules: map[model.Category]model.RuleSet{
					model.CategoryOthers: {},
				}})
				return err
			},
			wantErr: model.ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.wantErr)
			assert.Equal(t, 1, eng.Thresholds(ctx).Version)
		})
	}
}

func TestEngine_EmptyRuleSetMatchesEverything(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	_, err := eng.RemoveRule(ctx, model.CategoryPrestigeLeverage, "yMin")
	require.NoError(t, err)
	cfg, err := eng.RemoveRule(ctx, model.CategoryPrestigeLeverage, "xMax")
	require.NoError(t, err)

	assert.Equal(t, []model.Category{model.CategoryPrestigeLeverage}, cfg.EmptyRuleSets())
	cats := requireConsistent(t, eng, db)
	assert.Equal(t, model.CategoryPrestigeLeverage, cats["Emery Other"])
	assert.Equal(t, model.CategoryCorePower, cats["Avery Core"])
}

func TestEngine_Replace(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	cfg, err := eng.Replace(ctx, &model.Thresholds{
		Version: 99,
		Rules: map[model.Category]model.RuleSet{
			model.CategoryExecutionForce: {model.KeyZMin: 5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Version)

	cats := requireConsistent(t, eng, db)
	assert.Equal(t, model.CategoryExecutionForce, cats["Avery Core"])
	assert.Equal(t, model.CategoryOthers, cats["Blake Strategic"])

	again, err := eng.Replace(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version)
}

func TestEngine_Reclassify(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	stale := db.Contacts[0]
	stale.Category = model.CategoryOthers
	require.NoError(t, db.Storage.UpdateContactCategories(ctx, []model.Contact{stale}))

	// Reads never expose the stale cache.
	c, err := eng.Contact(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCorePower, c.Category)

	var calls, lastTotal int
	changed, err := eng.Reclassify(ctx, func(done, total int) {
		calls++
		lastTotal = total
	})
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, stale.ID, changed[0].ID)
	assert.Equal(t, len(db.Contacts), calls)
	assert.Equal(t, len(db.Contacts), lastTotal)

	assert.Equal(t, model.CategoryCorePower, db.MustGetContact(stale.ID).Category)
}

func TestEngine_RetriesBusyStorage(t *testing.T) {
	db := testutil.SetupTestDB(t, contacts.NewBuilder(t).WithFixture(contacts.FixtureOnePerCategory))
	flaky := &flakyStorage{Storage: db.Storage, failures: 2}

	eng, err := New(context.Background(), flaky, nil, WithRetryOptions(testRetry))
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Thresholds(context.Background()).Version)
	assert.Equal(t, 3, flaky.calls)
}

func TestEngine_ConcurrentMutations(t *testing.T) {
	eng, db := seededEngine(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers*2)

	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := eng.UpdateValue(ctx, model.CategoryCorePower, "xMin", float64(i)+0.5); err != nil {
				errs <- err
			}
		}(i)
		go func() {
			defer wg.Done()
			cfg := eng.Thresholds(ctx)
			if _, ok := cfg.RuleSet(model.CategoryCorePower); !ok {
				errs <- assert.AnError
			}
			if _, err := eng.Contacts(ctx); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}

	assert.Equal(t, 1+writers, eng.Thresholds(ctx).Version)
	requireConsistent(t, eng, db)
}

type flakyStorage struct {
	service.Storage
	failures int
	calls    int
	mu       sync.Mutex
}

func (f *flakyStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return nil, sqlite3.Error{Code: sqlite3.ErrBusy}
	}
	return f.Storage.BeginTx(ctx)
}
