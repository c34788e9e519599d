package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `email, display_name, avatar_url, privilege, created_at, updated_at`

var errUserNotFound = store.ErrNotFound.WithMessage("user not found")

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		avatarURL sql.NullString
		privilege string
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&u.Email, &u.DisplayName, &avatarURL, &privilege, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	u.AvatarURL = avatarURL.String
	u.Privilege = domain.Privilege(privilege)

	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the email is already registered.
func (q *queries) CreateUser(ctx context.Context, u *domain.User) error {
	privilege := u.Privilege
	if privilege == "" {
		privilege = domain.PrivilegeDefault
	}

	_, err := q.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email,
		u.DisplayName,
		nullString(u.AvatarURL),
		string(privilege),
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	)
	if err != nil {
		return mapConstraintError(err)
	}
	u.Privilege = privilege
	return nil
}

// GetUser retrieves a user by email.
func (q *queries) GetUser(ctx context.Context, email string) (*domain.User, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsers returns every user ordered by email.
func (q *queries) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListSuperuserEmails returns the emails of every superuser, read fresh.
func (q *queries) ListSuperuserEmails(ctx context.Context) ([]string, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT email FROM users WHERE privilege = ? ORDER BY email`, string(domain.PrivilegeSuperuser))
	if err != nil {
		return nil, fmt.Errorf("list superusers: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan superuser: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// SetUserPrivilege changes a user's privilege.
func (q *queries) SetUserPrivilege(ctx context.Context, email string, privilege domain.Privilege) error {
	res, err := q.q.ExecContext(ctx,
		`UPDATE users SET privilege = ?, updated_at = ? WHERE email = ?`,
		string(privilege), formatTime(nowUTC()), email)
	if err != nil {
		return fmt.Errorf("set privilege: %w", err)
	}
	return checkAffected(res, errUserNotFound)
}
