// Package testutil provides shared test helpers: an isolated, migrated
// in-memory database and contact seeding.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/service"
	"github.com/Veraticus/social-capital/internal/storage"
	"github.com/Veraticus/social-capital/internal/testutil/contacts"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage  service.Storage
	t        *testing.T
	Contacts []model.Contact
}

// SetupTestDB creates a new in-memory test database seeded with the given
// builder's contacts. It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, contacts.NewBuilder(t).
//		WithFixture(contacts.FixtureOnePerCategory))
func SetupTestDB(t *testing.T, builder *contacts.Builder) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Builder: builder})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Builder        *contacts.Builder
	Thresholds     *model.Thresholds
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if opts.Thresholds != nil {
		if err := store.SaveThresholds(ctx, opts.Thresholds); err != nil {
			t.Fatalf("failed to seed thresholds: %v", err)
		}
	}

	var seeded []model.Contact
	if opts.Builder != nil {
		seeded = opts.Builder.Build(ctx, store)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage:  store,
		Contacts: seeded,
		t:        t,
	}
}

// MustGetContact returns the stored contact with the given id or fails the test.
func (db *TestDB) MustGetContact(id string) *model.Contact {
	db.t.Helper()
	c, err := db.Storage.GetContact(context.Background(), id)
	if err != nil {
		db.t.Fatalf("contact %s: %v", id, err)
	}
	return c
}
