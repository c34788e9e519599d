package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/store"
)

// gameColumns must match the scan order in scanGame.
const gameColumns = `id, name, genre_name, publisher_name, creator_email, release_date,
	description, rating, market_value, mv_date, pic_ref, pic_blurhash, created_at, updated_at`

func gameNotFound(name string) *store.Error {
	return store.ErrNotFound.WithMessage(fmt.Sprintf("game %q not found", name))
}

func scanGame(scanner interface{ Scan(dest ...any) error }) (*domain.Game, error) {
	var (
		g           domain.Game
		releaseDate sql.NullString
		description sql.NullString
		rating      sql.NullString
		marketValue sql.NullString
		mvDate      sql.NullString
		picRef      sql.NullString
		picBlurHash sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&g.ID,
		&g.Name,
		&g.GenreName,
		&g.PublisherName,
		&g.CreatorEmail,
		&releaseDate,
		&description,
		&rating,
		&marketValue,
		&mvDate,
		&picRef,
		&picBlurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if g.ReleaseDate, err = parseNullableDate(releaseDate); err != nil {
		return nil, err
	}
	if g.MarketValueDate, err = parseNullableDate(mvDate); err != nil {
		return nil, err
	}

	g.Description = description.String
	g.Rating = rating.String
	g.MarketValue = marketValue.String
	g.PictureRef = picRef.String
	g.PictureBlurHash = picBlurHash.String

	return &g, nil
}

// CreateGame inserts a game.
// Returns store.ErrAlreadyExists on a duplicate name and
// store.ErrDanglingReference when the genre, publisher or creator is missing.
func (q *queries) CreateGame(ctx context.Context, g *domain.Game) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO games (`+gameColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID,
		g.Name,
		g.GenreName,
		g.PublisherName,
		g.CreatorEmail,
		nullDate(g.ReleaseDate),
		nullString(g.Description),
		nullString(g.Rating),
		nullString(g.MarketValue),
		nullDate(g.MarketValueDate),
		nullString(g.PictureRef),
		nullString(g.PictureBlurHash),
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	)
	return mapConstraintError(err)
}

// GetGame retrieves a game by its exact name.
func (q *queries) GetGame(ctx context.Context, name string) (*domain.Game, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE name = ?`, name)

	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// ListGames returns games ordered by name, optionally filtered by genre or publisher.
func (q *queries) ListGames(ctx context.Context, filter store.GameFilter) ([]*domain.Game, error) {
	var (
		where []string
		args  []any
	)
	if filter.GenreName != "" {
		where = append(where, "genre_name = ?")
		args = append(args, filter.GenreName)
	}
	if filter.PublisherName != "" {
		where = append(where, "publisher_name = ?")
		args = append(args, filter.PublisherName)
	}

	query := `SELECT ` + gameColumns + ` FROM games`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name`

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// UpdateGame writes every mutable field of the game with g.ID.
// creator_email and created_at never change.
func (q *queries) UpdateGame(ctx context.Context, g *domain.Game) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE games SET
			name = ?, genre_name = ?, publisher_name = ?, release_date = ?,
			description = ?, rating = ?, market_value = ?, mv_date = ?,
			pic_ref = ?, pic_blurhash = ?, updated_at = ?
		WHERE id = ?`,
		g.Name,
		g.GenreName,
		g.PublisherName,
		nullDate(g.ReleaseDate),
		nullString(g.Description),
		nullString(g.Rating),
		nullString(g.MarketValue),
		nullDate(g.MarketValueDate),
		nullString(g.PictureRef),
		nullString(g.PictureBlurHash),
		formatTime(g.UpdatedAt),
		g.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return checkAffected(res, gameNotFound(g.Name))
}

// DeleteGame removes a game by ID.
func (q *queries) DeleteGame(ctx context.Context, id string) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return checkAffected(res, store.ErrNotFound.WithMessage("game not found"))
}
