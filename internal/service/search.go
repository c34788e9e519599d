package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/search"
	"github.com/icgdb/icgdb-server/internal/store"
)

// SearchService keeps the game index in step with the store and answers
// full-text queries. It satisfies GameIndexer.
type SearchService struct {
	index  *search.Index
	store  store.Queries
	logger *slog.Logger
}

var _ GameIndexer = (*SearchService)(nil)

// NewSearchService creates a search service. index may be nil when search
// is disabled.
func NewSearchService(index *search.Index, s store.Queries, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, store: s, logger: loggerOrDiscard(logger)}
}

// Enabled reports whether an index is attached.
func (s *SearchService) Enabled() bool {
	return s.index != nil
}

// EnsureIndexed rebuilds the index from the store when it was just created
// or is empty while the store has games.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	count, err := s.index.Count()
	if err != nil {
		return err
	}
	if !s.index.Fresh() && count > 0 {
		return nil
	}

	games, err := s.store.ListGames(ctx, store.GameFilter{})
	if err != nil {
		return err
	}
	if len(games) == 0 && count == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.index.Rebuild(games); err != nil {
		return err
	}
	s.logger.Info("search index rebuilt", "games", len(games))
	return nil
}

// Search runs a full-text query over games.
func (s *SearchService) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	if s.index == nil {
		return nil, domainerrors.Unavailable("Search is not enabled.")
	}
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" && q.Genre == "" && q.Publisher == "" {
		return nil, domainerrors.Validation("a search term or filter is required")
	}
	res, err := s.index.Search(ctx, q)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}
	return res, nil
}

// IndexGame implements GameIndexer.
func (s *SearchService) IndexGame(g *domain.Game) error {
	if s.index == nil {
		return nil
	}
	return s.index.IndexGame(g)
}

// IndexGames implements GameIndexer.
func (s *SearchService) IndexGames(games []*domain.Game) error {
	if s.index == nil {
		return nil
	}
	return s.index.IndexGames(games)
}

// DeleteGame implements GameIndexer.
func (s *SearchService) DeleteGame(id string) error {
	if s.index == nil {
		return nil
	}
	return s.index.DeleteGame(id)
}
