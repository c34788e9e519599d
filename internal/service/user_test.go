package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

func TestUserService_EnsureUserIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, created, err := f.users.EnsureUser(ctx, "new@example.com", "New <b>Person</b>", "https://img/a.png")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.PrivilegeDefault, u.Privilege)
	assert.Equal(t, "New Person", u.DisplayName)

	again, created, err := f.users.EnsureUser(ctx, "new@example.com", "Renamed", "https://img/b.png")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "New Person", again.DisplayName, "existing users are never overwritten")
	assert.Equal(t, "https://img/a.png", again.AvatarURL)
}

func TestUserService_EnsureUserKeepsPrivilege(t *testing.T) {
	f := newFixture(t)

	u, created, err := f.users.EnsureUser(context.Background(), root, "Root", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, domain.PrivilegeSuperuser, u.Privilege)
}

func TestUserService_EnsureUserRequiresEmail(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.users.EnsureUser(context.Background(), "", "Nobody", "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUserService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := f.users.List(ctx, root)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = f.users.List(ctx, alice)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = f.users.List(ctx, "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestUserService_SetPrivilege(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.SetPrivilege(ctx, root, alice, domain.PrivilegeSuperuser)
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser())

	_, err = f.users.SetPrivilege(ctx, bob, alice, domain.PrivilegeDefault)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = f.users.SetPrivilege(ctx, root, alice, "admin")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = f.users.SetPrivilege(ctx, root, "ghost@example.com", domain.PrivilegeSuperuser)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
