// Package service implements the catalog's business operations on top of
// the store: ownership checks, the name registry, reassignment-safe delete,
// rename propagation and identity bootstrap.
package service

import (
	"errors"
	"log/slog"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/store"
)

// nameTakenMessage is the user-facing text for a name registry conflict.
const nameTakenMessage = "Name already taken!"

// GameIndexer receives committed game writes. Failures are logged, never
// returned to the caller: the store is the source of truth.
type GameIndexer interface {
	IndexGame(g *domain.Game) error
	IndexGames(games []*domain.Game) error
	DeleteGame(id string) error
}

type noopIndexer struct{}

func (noopIndexer) IndexGame(*domain.Game) error { return nil }

func (noopIndexer) IndexGames([]*domain.Game) error { return nil }

func (noopIndexer) DeleteGame(string) error { return nil }

func indexerOrNoop(ix GameIndexer) GameIndexer {
	if ix == nil {
		return noopIndexer{}
	}
	return ix
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}

// requireLogin rejects anonymous callers.
func requireLogin(email string) error {
	if email == "" {
		return domainerrors.Unauthenticated("You must be logged in.")
	}
	return nil
}

// notFound builds the NotFound error for a named record.
func notFound(kind domain.Kind, name string) error {
	return domainerrors.NotFoundf("%s %q not found", kind.Label(), name)
}

// translate maps store errors to domain errors. Domain errors and unknown
// errors pass through; kind and name describe the record being written.
func translate(err error, kind domain.Kind, name string) error {
	if err == nil {
		return nil
	}
	var de *domainerrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound(kind, name)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.NameConflict(nameTakenMessage).WithCause(err)
	case errors.Is(err, store.ErrDanglingReference):
		return domainerrors.Validationf("%s %q references a record that does not exist", kind.Label(), name).WithCause(err)
	default:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "database error")
	}
}
