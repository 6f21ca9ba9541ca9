// Package storage provides the data persistence layer for the capital application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/social-capital/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidContact    = errors.New("invalid contact")
	ErrInvalidThresholds = errors.New("invalid thresholds")
)

// validateContext ensures the context is not nil.
//
//nolint:staticcheck // callers may legitimately pass a nil interface by mistake
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateContact validates a single contact before it is written.
func validateContact(contact *model.Contact) error {
	if contact == nil {
		return fmt.Errorf("%w: contact", ErrNilParameter)
	}
	if strings.TrimSpace(contact.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidContact)
	}
	if strings.TrimSpace(contact.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidContact)
	}
	if !contact.Category.IsKnown() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidContact, contact.Category)
	}
	return nil
}

// validateThresholds rejects configurations that could never have come from
// the engine: rules on the fallback category or on unknown categories.
func validateThresholds(thresholds *model.Thresholds) error {
	if thresholds == nil {
		return fmt.Errorf("%w: thresholds", ErrNilParameter)
	}
	if thresholds.Version < 1 {
		return fmt.Errorf("%w: version must be positive, got %d", ErrInvalidThresholds, thresholds.Version)
	}
	for c := range thresholds.Rules {
		if !c.IsConfigurable() {
			return fmt.Errorf("%w: category %q cannot carry rules", ErrInvalidThresholds, c)
		}
	}
	return nil
}
