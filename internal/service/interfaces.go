// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/social-capital/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Contact operations
	SaveContact(ctx context.Context, contact *model.Contact) error
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
	UpdateContactCategories(ctx context.Context, contacts []model.Contact) error

	// Threshold operations. GetThresholds returns nil when nothing has been saved.
	GetThresholds(ctx context.Context) (*model.Thresholds, error)
	SaveThresholds(ctx context.Context, thresholds *model.Thresholds) error
	GetThresholdHistory(ctx context.Context, limit int) ([]model.Thresholds, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
