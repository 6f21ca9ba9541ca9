package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/social-capital/internal/model"
)

// GetThresholds returns the active configuration, or nil if none has been saved.
func (s *SQLiteStorage) GetThresholds(ctx context.Context) (*model.Thresholds, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getThresholdsTx(ctx, s.db)
}

func (s *SQLiteStorage) getThresholdsTx(ctx context.Context, q queryable) (*model.Thresholds, error) {
	var (
		t      model.Thresholds
		config string
	)
	err := q.QueryRowContext(ctx,
		`SELECT version, config, updated_at FROM thresholds WHERE id = 1`,
	).Scan(&t.Version, &config, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thresholds: %w", err)
	}
	if err := json.Unmarshal([]byte(config), &t.Rules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thresholds: %w", err)
	}
	return &t, nil
}

// SaveThresholds replaces the active configuration and records it in history.
func (s *SQLiteStorage) SaveThresholds(ctx context.Context, thresholds *model.Thresholds) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateThresholds(thresholds); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := s.saveThresholdsTx(ctx, tx, thresholds); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) saveThresholdsTx(ctx context.Context, q queryable, thresholds *model.Thresholds) error {
	rules := thresholds.Rules
	if rules == nil {
		rules = map[model.Category]model.RuleSet{}
	}
	config, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal thresholds: %w", err)
	}
	if thresholds.UpdatedAt.IsZero() {
		thresholds.UpdatedAt = time.Now()
	}

	if _, err := q.ExecContext(ctx, `
		INSERT INTO thresholds (id, version, config, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			config = excluded.config,
			updated_at = excluded.updated_at
	`, thresholds.Version, string(config), thresholds.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save thresholds: %w", err)
	}

	if _, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO threshold_history (version, config, updated_at)
		VALUES (?, ?, ?)
	`, thresholds.Version, string(config), thresholds.UpdatedAt); err != nil {
		return fmt.Errorf("failed to record threshold history: %w", err)
	}
	return nil
}

// GetThresholdHistory returns past configurations, newest first. A limit of
// zero or less returns every version.
func (s *SQLiteStorage) GetThresholdHistory(ctx context.Context, limit int) ([]model.Thresholds, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getThresholdHistoryTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) getThresholdHistoryTx(ctx context.Context, q queryable, limit int) ([]model.Thresholds, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.QueryContext(ctx, `
		SELECT version, config, updated_at FROM threshold_history
		ORDER BY version DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query threshold history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var history []model.Thresholds
	for rows.Next() {
		var (
			t      model.Thresholds
			config string
		)
		if err := rows.Scan(&t.Version, &config, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan threshold history: %w", err)
		}
		if err := json.Unmarshal([]byte(config), &t.Rules); err != nil {
			return nil, fmt.Errorf("failed to unmarshal threshold version %d: %w", t.Version, err)
		}
		history = append(history, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate threshold history: %w", err)
	}
	return history, nil
}
