package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/sanitize"
	"github.com/icgdb/icgdb-server/internal/store"
)

// UserService manages identities and privileges.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(s store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: s, logger: loggerOrDiscard(logger)}
}

// EnsureUser returns the user with email, creating it with the default
// privilege when absent. An existing user is never modified. created
// reports whether this call inserted the row.
func (s *UserService) EnsureUser(ctx context.Context, email, displayName, avatarURL string) (*domain.User, bool, error) {
	if email == "" {
		return nil, false, domainerrors.Validation("email is required")
	}

	existing, err := s.store.GetUser(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not load user")
	}

	u := &domain.User{
		Email:       email,
		DisplayName: sanitize.Name(displayName),
		AvatarURL:   avatarURL,
		Privilege:   domain.PrivilegeDefault,
	}
	u.InitTimestamps()

	err = s.store.CreateUser(ctx, u)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a race with a concurrent login for the same email.
		existing, err := s.store.GetUser(ctx, email)
		if err != nil {
			return nil, false, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not load user")
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not create user")
	}

	s.logger.Info("user created", "email", email)
	return u, true, nil
}

// Get returns the user with email.
func (s *UserService) Get(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("User %q not found", email)
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not load user")
	}
	return u, nil
}

// List returns every user. Superusers only.
func (s *UserService) List(ctx context.Context, actingEmail string) ([]*domain.User, error) {
	if err := s.requireSuperuser(ctx, s.store, actingEmail); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not list users")
	}
	return users, nil
}

// SetPrivilege grants or revokes superuser for email. Superusers only.
// The change is visible to the very next ownership check.
func (s *UserService) SetPrivilege(ctx context.Context, actingEmail, email string, privilege domain.Privilege) (*domain.User, error) {
	if !privilege.Valid() {
		return nil, domainerrors.Validationf("privilege must be %q or %q", domain.PrivilegeDefault, domain.PrivilegeSuperuser)
	}

	var updated *domain.User
	err := s.store.InTx(ctx, func(q store.Queries) error {
		if err := s.requireSuperuser(ctx, q, actingEmail); err != nil {
			return err
		}
		if err := q.SetUserPrivilege(ctx, email, privilege); err != nil {
			return err
		}
		u, err := q.GetUser(ctx, email)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("User %q not found", email)
	}
	if err != nil {
		return nil, translate(err, "user", email)
	}

	s.logger.Info("user privilege changed", "email", email, "privilege", privilege, "by", actingEmail)
	return updated, nil
}

func (s *UserService) requireSuperuser(ctx context.Context, q store.Queries, actingEmail string) error {
	if err := requireLogin(actingEmail); err != nil {
		return err
	}
	u, err := q.GetUser(ctx, actingEmail)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.Unauthenticated("You must be logged in.")
	}
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "could not load user")
	}
	if !u.IsSuperuser() {
		return domainerrors.Unauthorized("Only superusers may do this.")
	}
	return nil
}
