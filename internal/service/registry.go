package service

import (
	"context"
	"fmt"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/store"
)

// NameReader is the part of the store the name registry reads.
type NameReader interface {
	NameExists(ctx context.Context, kind domain.Kind, name string) (bool, error)
}

// NameRegistry answers whether a name is already used within a kind.
// Matching is exact and case-sensitive; "RPG" and "rpg" are distinct.
type NameRegistry struct {
	reader NameReader
}

// NewNameRegistry creates a registry over r.
func NewNameRegistry(r NameReader) *NameRegistry {
	return &NameRegistry{reader: r}
}

// IsNameTaken reports whether a record of kind already has candidate as its name.
func (r *NameRegistry) IsNameTaken(ctx context.Context, kind domain.Kind, candidate string) (bool, error) {
	return isNameTaken(ctx, r.reader, kind, candidate)
}

func isNameTaken(ctx context.Context, r NameReader, kind domain.Kind, candidate string) (bool, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return false, domainerrors.Validation(err.Error())
	}
	taken, err := r.NameExists(ctx, kind, candidate)
	if err != nil {
		return false, fmt.Errorf("check %s name: %w", kind, err)
	}
	return taken, nil
}

// ensureNameFree returns NameConflict when candidate is taken. Run it on the
// same Queries as the write that follows.
func ensureNameFree(ctx context.Context, q store.Queries, kind domain.Kind, candidate string) error {
	taken, err := isNameTaken(ctx, q, kind, candidate)
	if err != nil {
		return err
	}
	if taken {
		return domainerrors.NameConflict(nameTakenMessage)
	}
	return nil
}
