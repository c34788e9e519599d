package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

func TestNameRegistry_IsNameTaken(t *testing.T) {
	f := newFixture(t)
	f.genre(t, alice, "RPG")
	f.publisher(t, alice, "Sega")

	reg := NewNameRegistry(f.store)
	ctx := context.Background()

	tests := []struct {
		name      string
		kind      domain.Kind
		candidate string
		taken     bool
	}{
		{"exact match", domain.KindGenre, "RPG", true},
		{"case differs", domain.KindGenre, "rpg", false},
		{"other kind", domain.KindPublisher, "RPG", false},
		{"sentinel genre", domain.KindGenre, "Other", true},
		{"sentinel publisher", domain.KindPublisher, "Other", true},
		{"no games yet", domain.KindGame, "Sega", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken, err := reg.IsNameTaken(ctx, tt.kind, tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.taken, taken)
		})
	}
}

func TestNameRegistry_UnknownKind(t *testing.T) {
	f := newFixture(t)

	_, err := NewNameRegistry(f.store).IsNameTaken(context.Background(), domain.Kind("platform"), "PC")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
