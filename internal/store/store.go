// Package store defines the persistence interface for the ICGDB catalog.
package store

import (
	"context"

	"github.com/icgdb/icgdb-server/internal/domain"
)

// GameFilter narrows ListGames. Empty fields match everything.
type GameFilter struct {
	GenreName     string
	PublisherName string
}

// Queries is the set of reads and writes available both on the store and
// inside a transaction opened with InTx.
type Queries interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListSuperuserEmails(ctx context.Context) ([]string, error)
	SetUserPrivilege(ctx context.Context, email string, privilege domain.Privilege) error

	// Genres and publishers
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, kind domain.Kind, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, kind domain.Kind) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	RenameCategory(ctx context.Context, kind domain.Kind, oldName, newName string) error
	DeleteCategory(ctx context.Context, kind domain.Kind, name string) error

	// RepointGames sets the kind's name field on every game from one name to
	// another and returns the number of games changed.
	RepointGames(ctx context.Context, kind domain.Kind, from, to string) (int, error)

	// Name registry
	NameExists(ctx context.Context, kind domain.Kind, name string) (bool, error)
	ListNames(ctx context.Context, kind domain.Kind) ([]string, error)

	// Games
	CreateGame(ctx context.Context, g *domain.Game) error
	GetGame(ctx context.Context, name string) (*domain.Game, error)
	ListGames(ctx context.Context, filter GameFilter) ([]*domain.Game, error)
	UpdateGame(ctx context.Context, g *domain.Game) error
	DeleteGame(ctx context.Context, id string) error
}

// Store is the full persistence surface.
type Store interface {
	Queries

	// InTx runs fn inside a single write transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(q Queries) error) error

	Close() error
}
