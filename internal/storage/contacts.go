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

// ErrContactNotFound is returned when a contact id has no row.
var ErrContactNotFound = errors.New("contact not found")

const contactColumns = `id, name, x, y, z, note, value_provide, value_receive, tags, category, created_at, updated_at`

// SaveContact inserts or replaces a contact.
func (s *SQLiteStorage) SaveContact(ctx context.Context, contact *model.Contact) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateContact(contact); err != nil {
		return err
	}
	return s.saveContactTx(ctx, s.db, contact)
}

func (s *SQLiteStorage) saveContactTx(ctx context.Context, q queryable, contact *model.Contact) error {
	tags := contact.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	now := time.Now()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now

	_, err = q.ExecContext(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			x = excluded.x,
			y = excluded.y,
			z = excluded.z,
			note = excluded.note,
			value_provide = excluded.value_provide,
			value_receive = excluded.value_receive,
			tags = excluded.tags,
			category = excluded.category,
			updated_at = excluded.updated_at
	`,
		contact.ID,
		contact.Name,
		contact.Score.X,
		contact.Score.Y,
		contact.Score.Z,
		contact.Note,
		contact.ValueProvide,
		contact.ValueReceive,
		string(tagsJSON),
		string(contact.Category),
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save contact %s: %w", contact.ID, err)
	}
	return nil
}

// GetContact retrieves a contact by id.
func (s *SQLiteStorage) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getContactTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getContactTx(ctx context.Context, q queryable, id string) (*model.Contact, error) {
	row := q.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %s: %w", id, err)
	}
	return contact, nil
}

// ListContacts returns all contacts ordered by creation time.
func (s *SQLiteStorage) ListContacts(ctx context.Context) ([]model.Contact, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listContactsTx(ctx, s.db)
}

func (s *SQLiteStorage) listContactsTx(ctx context.Context, q queryable) ([]model.Contact, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var contacts []model.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	return contacts, nil
}

// DeleteContact removes a contact.
func (s *SQLiteStorage) DeleteContact(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteContactTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteContactTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrContactNotFound
	}
	return nil
}

// UpdateContactCategories writes only the category column for each contact.
func (s *SQLiteStorage) UpdateContactCategories(ctx context.Context, contacts []model.Contact) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateContactCategoriesTx(ctx, s.db, contacts)
}

func (s *SQLiteStorage) updateContactCategoriesTx(ctx context.Context, q queryable, contacts []model.Contact) error {
	for _, c := range contacts {
		if !c.Category.IsKnown() {
			return fmt.Errorf("%w: unknown category %q for %s", ErrInvalidContact, c.Category, c.ID)
		}
		if _, err := q.ExecContext(ctx,
			`UPDATE contacts SET category = ? WHERE id = ?`,
			string(c.Category), c.ID,
		); err != nil {
			return fmt.Errorf("failed to update category for %s: %w", c.ID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(r rowScanner) (*model.Contact, error) {
	var (
		c        model.Contact
		tagsJSON string
		category string
	)
	if err := r.Scan(
		&c.ID,
		&c.Name,
		&c.Score.X,
		&c.Score.Y,
		&c.Score.Z,
		&c.Note,
		&c.ValueProvide,
		&c.ValueReceive,
		&tagsJSON,
		&category,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Category = model.Category(category)
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags for %s: %w", c.ID, err)
		}
	}
	return &c, nil
}
