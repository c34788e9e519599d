package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

type fakeReader struct {
	emails []string
	err    error
	calls  int
}

func (f *fakeReader) ListSuperuserEmails(context.Context) ([]string, error) {
	f.calls++
	return f.emails, f.err
}

func TestCanMutate(t *testing.T) {
	tests := []struct {
		name       string
		superusers []string
		acting     string
		creator    string
		want       bool
	}{
		{"creator", nil, "a@x.com", "a@x.com", true},
		{"superuser on other's record", []string{"root@x.com"}, "root@x.com", "a@x.com", true},
		{"stranger", []string{"root@x.com"}, "b@x.com", "a@x.com", false},
		{"case differs", nil, "A@x.com", "a@x.com", false},
		{"anonymous", []string{""}, "", "", false},
		{"creatorless record, plain user", nil, "a@x.com", "", false},
		{"creatorless record, superuser", []string{"root@x.com"}, "root@x.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeReader{emails: tt.superusers}
			got, err := CanMutate(context.Background(), r, tt.acting, tt.creator)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanMutate_ReadsSuperusersEveryCall(t *testing.T) {
	r := &fakeReader{}
	ctx := context.Background()

	ok, err := CanMutate(ctx, r, "b@x.com", "a@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	r.emails = []string{"b@x.com"}
	ok, err = CanMutate(ctx, r, "b@x.com", "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok, "promotion must take effect on the next check")

	r.emails = nil
	ok, err = CanMutate(ctx, r, "b@x.com", "a@x.com")
	require.NoError(t, err)
	assert.False(t, ok, "demotion must take effect on the next check")

	assert.Equal(t, 3, r.calls)
}

func TestCanMutate_CreatorSkipsLookup(t *testing.T) {
	r := &fakeReader{err: errors.New("unreachable")}

	ok, err := CanMutate(context.Background(), r, "a@x.com", "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, r.calls)
}

func TestRequire(t *testing.T) {
	ctx := context.Background()

	err := Require(ctx, &fakeReader{}, "b@x.com", "a@x.com")
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))

	err = Require(ctx, &fakeReader{err: errors.New("db down")}, "b@x.com", "a@x.com")
	var de *domainerrors.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domainerrors.CodeInternal, de.Code)

	assert.NoError(t, Require(ctx, &fakeReader{}, "a@x.com", "a@x.com"))
}
