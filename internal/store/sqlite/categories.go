package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/store"
)

// categoryColumns must match the scan order in scanCategory.
const categoryColumns = `id, name, description, creator_email, created_at, updated_at`

func categoryNotFound(kind domain.Kind, name string) *store.Error {
	return store.ErrNotFound.WithMessage(fmt.Sprintf("%s %q not found", kind, name))
}

func scanCategory(kind domain.Kind, scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c            domain.Category
		description  sql.NullString
		creatorEmail sql.NullString
		createdAt    string
		updatedAt    string
	)

	if err := scanner.Scan(&c.ID, &c.Name, &description, &creatorEmail, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	c.Kind = kind
	c.Description = description.String
	c.CreatorEmail = creatorEmail.String

	return &c, nil
}

// CreateCategory inserts a genre or publisher.
// Returns store.ErrAlreadyExists if the name or ID is taken.
func (q *queries) CreateCategory(ctx context.Context, c *domain.Category) error {
	table, err := categoryTable(c.Kind)
	if err != nil {
		return err
	}

	_, err = q.q.ExecContext(ctx, `
		INSERT INTO `+table+` (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Name,
		nullString(c.Description),
		nullString(c.CreatorEmail),
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	return mapConstraintError(err)
}

// GetCategory retrieves a genre or publisher by its exact name.
func (q *queries) GetCategory(ctx context.Context, kind domain.Kind, name string) (*domain.Category, error) {
	table, err := categoryTable(kind)
	if err != nil {
		return nil, err
	}

	row := q.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM `+table+` WHERE name = ?`, name)
	c, err := scanCategory(kind, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, categoryNotFound(kind, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return c, nil
}

// ListCategories returns every record of a kind ordered by name.
func (q *queries) ListCategories(ctx context.Context, kind domain.Kind) ([]*domain.Category, error) {
	table, err := categoryTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := q.q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		c, err := scanCategory(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCategory writes the description of the record with c.ID.
// Names change only through RenameCategory.
func (q *queries) UpdateCategory(ctx context.Context, c *domain.Category) error {
	table, err := categoryTable(c.Kind)
	if err != nil {
		return err
	}

	res, err := q.q.ExecContext(ctx,
		`UPDATE `+table+` SET description = ?, updated_at = ? WHERE id = ?`,
		nullString(c.Description), formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", c.Kind, err)
	}
	return checkAffected(res, categoryNotFound(c.Kind, c.Name))
}

// RenameCategory changes a record's name. Games still referencing the old
// name fail the deferred foreign key at commit unless RepointGames runs in
// the same transaction.
func (q *queries) RenameCategory(ctx context.Context, kind domain.Kind, oldName, newName string) error {
	table, err := categoryTable(kind)
	if err != nil {
		return err
	}

	res, err := q.q.ExecContext(ctx,
		`UPDATE `+table+` SET name = ?, updated_at = ? WHERE name = ?`,
		newName, formatTime(nowUTC()), oldName)
	if err != nil {
		return mapConstraintError(err)
	}
	return checkAffected(res, categoryNotFound(kind, oldName))
}

// DeleteCategory removes a record by name.
func (q *queries) DeleteCategory(ctx context.Context, kind domain.Kind, name string) error {
	table, err := categoryTable(kind)
	if err != nil {
		return err
	}

	res, err := q.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE name = ?`, name)
	if err != nil {
		return mapConstraintError(err)
	}
	return checkAffected(res, categoryNotFound(kind, name))
}

// RepointGames moves every game referencing from to to.
func (q *queries) RepointGames(ctx context.Context, kind domain.Kind, from, to string) (int, error) {
	column, err := gameColumn(kind)
	if err != nil {
		return 0, err
	}

	res, err := q.q.ExecContext(ctx,
		`UPDATE games SET `+column+` = ?, updated_at = ? WHERE `+column+` = ?`,
		to, formatTime(nowUTC()), from)
	if err != nil {
		return 0, mapConstraintError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// NameExists reports whether a record of kind has exactly this name.
// SQLite's default BINARY collation makes the comparison case-sensitive.
func (q *queries) NameExists(ctx context.Context, kind domain.Kind, name string) (bool, error) {
	table, err := nameTable(kind)
	if err != nil {
		return false, err
	}

	var exists int
	err = q.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s name: %w", kind, err)
	}
	return exists == 1, nil
}

// ListNames returns every name of a kind in ascending order.
func (q *queries) ListNames(ctx context.Context, kind domain.Kind) ([]string, error) {
	table, err := nameTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := q.q.QueryContext(ctx, `SELECT name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list %s names: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
