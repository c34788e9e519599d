package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/id"
	"github.com/icgdb/icgdb-server/internal/policy"
	"github.com/icgdb/icgdb-server/internal/sanitize"
	"github.com/icgdb/icgdb-server/internal/store"
	"github.com/icgdb/icgdb-server/internal/validation"
)

// CategoryInput is the writable part of a genre or publisher.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=80,excludesall=/"`
	Description string `json:"description" validate:"max=500"`
}

func (in *CategoryInput) clean() {
	in.Name = sanitize.Name(in.Name)
	in.Description = sanitize.Text(in.Description)
}

// CategoryPage is a genre or publisher with the games filed under it.
type CategoryPage struct {
	Category *domain.Category `json:"category"`
	Games    []*domain.Game   `json:"games"`
	// Related holds the sorted distinct names of the other category kind
	// among Games: publishers on a genre page, genres on a publisher page.
	Related []string `json:"related"`
}

// RenameResult reports a completed rename.
type RenameResult struct {
	Category     *domain.Category `json:"category"`
	GamesUpdated int              `json:"games_updated"`
}

// DeleteResult reports a completed delete.
type DeleteResult struct {
	Name            string `json:"name"`
	GamesReassigned int    `json:"games_reassigned"`
}

// CategoryService manages genres and publishers.
type CategoryService struct {
	store     store.Store
	validator *validation.Validator
	indexer   GameIndexer
	logger    *slog.Logger
}

// NewCategoryService creates a category service. indexer may be nil.
func NewCategoryService(s store.Store, v *validation.Validator, indexer GameIndexer, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:     s,
		validator: v,
		indexer:   indexerOrNoop(indexer),
		logger:    loggerOrDiscard(logger),
	}
}

func checkCategoryKind(kind domain.Kind) error {
	if !kind.IsCategory() {
		return domainerrors.Validationf("%q is not a genre or publisher kind", kind)
	}
	return nil
}

// Create adds a genre or publisher owned by actingEmail.
func (s *CategoryService) Create(ctx context.Context, actingEmail string, kind domain.Kind, in CategoryInput) (*domain.Category, error) {
	if err := requireLogin(actingEmail); err != nil {
		return nil, err
	}
	if err := checkCategoryKind(kind); err != nil {
		return nil, err
	}
	in.clean()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	recordID, err := id.Generate(string(kind))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not generate id")
	}
	c := &domain.Category{
		ID:           recordID,
		Kind:         kind,
		Name:         in.Name,
		Description:  in.Description,
		CreatorEmail: actingEmail,
	}
	c.InitTimestamps()

	err = s.store.InTx(ctx, func(q store.Queries) error {
		if err := ensureNameFree(ctx, q, kind, in.Name); err != nil {
			return err
		}
		return q.CreateCategory(ctx, c)
	})
	if err != nil {
		return nil, translate(err, kind, in.Name)
	}

	s.logger.Info(string(kind)+" created", "name", c.Name, "creator", actingEmail)
	return c, nil
}

// Get returns a genre or publisher by exact name.
func (s *CategoryService) Get(ctx context.Context, kind domain.Kind, name string) (*domain.Category, error) {
	if err := checkCategoryKind(kind); err != nil {
		return nil, err
	}
	c, err := s.store.GetCategory(ctx, kind, name)
	if err != nil {
		return nil, translate(err, kind, name)
	}
	return c, nil
}

// List returns every record of kind ordered by name.
func (s *CategoryService) List(ctx context.Context, kind domain.Kind) ([]*domain.Category, error) {
	if err := checkCategoryKind(kind); err != nil {
		return nil, err
	}
	list, err := s.store.ListCategories(ctx, kind)
	if err != nil {
		return nil, translate(err, kind, "")
	}
	return list, nil
}

// Names returns every name of kind ordered by name.
func (s *CategoryService) Names(ctx context.Context, kind domain.Kind) ([]string, error) {
	if err := checkCategoryKind(kind); err != nil {
		return nil, err
	}
	names, err := s.store.ListNames(ctx, kind)
	if err != nil {
		return nil, translate(err, kind, "")
	}
	return names, nil
}

// Page returns a record with its games and the related names of the other kind.
func (s *CategoryService) Page(ctx context.Context, kind domain.Kind, name string) (*CategoryPage, error) {
	if err := checkCategoryKind(kind); err != nil {
		return nil, err
	}

	var page CategoryPage
	err := s.store.InTx(ctx, func(q store.Queries) error {
		c, err := q.GetCategory(ctx, kind, name)
		if err != nil {
			return err
		}
		games, err := q.ListGames(ctx, gameFilterFor(kind, name))
		if err != nil {
			return err
		}
		page = CategoryPage{Category: c, Games: games, Related: relatedNames(kind, games)}
		return nil
	})
	if err != nil {
		return nil, translate(err, kind, name)
	}
	return &page, nil
}

// UpdateDescription changes a record's description. Only the creator or a
// superuser may do this; the sentinel has no creator, so only superusers.
func (s *CategoryService) UpdateDescription(ctx context.Context, actingEmail string, kind domain.Kind, name, description string) (*domain.Category, error) {
	if err := requireLogin(actingEmail); err != nil {
		return nil, err
	}
	if err := checkCategoryKind(kind); err != nil {
		return nil, err
	}
	in := CategoryInput{Name: name, Description: description}
	in.clean()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var updated *domain.Category
	err := s.store.InTx(ctx, func(q store.Queries) error {
		c, err := q.GetCategory(ctx, kind, name)
		if err != nil {
			return err
		}
		if err := policy.Require(ctx, q, actingEmail, c.CreatorEmail); err != nil {
			return err
		}
		c.Description = in.Description
		c.Touch()
		if err := q.UpdateCategory(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, translate(err, kind, name)
	}

	s.logger.Info(string(kind)+" updated", "name", name, "by", actingEmail)
	return updated, nil
}

// Rename changes a record's name and moves every game that referenced the
// old name to the new one, atomically. Renaming from or to "Other" is
// ProtectedSentinel; renaming to the current name is a no-op.
func (s *CategoryService) Rename(ctx context.Context, actingEmail string, kind domain.Kind, oldName, newName string) (*RenameResult, error) {
	if err := checkCategoryKind(kind); err != nil {
		return nil, err
	}
	in := CategoryInput{Name: newName}
	in.clean()
	newName = in.Name

	if oldName == domain.SentinelName {
		return nil, domainerrors.ProtectedSentinel(`"Other" cannot be renamed.`)
	}
	if newName == domain.SentinelName {
		return nil, domainerrors.ProtectedSentinel(`"Other" is reserved.`)
	}
	if err := requireLogin(actingEmail); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var (
		result RenameResult
		moved  []*domain.Game
	)
	err := s.store.InTx(ctx, func(q store.Queries) error {
		c, err := q.GetCategory(ctx, kind, oldName)
		if err != nil {
			return err
		}
		if err := policy.Require(ctx, q, actingEmail, c.CreatorEmail); err != nil {
			return err
		}
		if newName == oldName {
			result.Category = c
			return nil
		}
		if err := ensureNameFree(ctx, q, kind, newName); err != nil {
			return err
		}

		if moved, err = q.ListGames(ctx, gameFilterFor(kind, oldName)); err != nil {
			return err
		}
		if err := q.RenameCategory(ctx, kind, oldName, newName); err != nil {
			return err
		}
		n, err := q.RepointGames(ctx, kind, oldName, newName)
		if err != nil {
			return err
		}

		c.Name = newName
		c.Touch()
		result = RenameResult{Category: c, GamesUpdated: n}
		return nil
	})
	if err != nil {
		return nil, translate(err, kind, oldName)
	}

	if newName != oldName {
		s.reindex(kind, moved, newName)
		s.logger.Info(string(kind)+" renamed",
			"from", oldName,
			"to", newName,
			"games", result.GamesUpdated,
			"by", actingEmail,
		)
	}
	return &result, nil
}

// Delete removes a genre or publisher after reassigning every game that
// referenced it to "Other". The steps run in one transaction, in order:
// sentinel check, load, ownership check, reassign, delete.
func (s *CategoryService) Delete(ctx context.Context, actingEmail string, kind domain.Kind, name string) (*DeleteResult, error) {
	if err := checkCategoryKind(kind); err != nil {
		return nil, err
	}
	if name == domain.SentinelName {
		return nil, domainerrors.ProtectedSentinel(`"Other" cannot be deleted.`)
	}
	if err := requireLogin(actingEmail); err != nil {
		return nil, err
	}

	var (
		result DeleteResult
		moved  []*domain.Game
	)
	err := s.store.InTx(ctx, func(q store.Queries) error {
		c, err := q.GetCategory(ctx, kind, name)
		if err != nil {
			return err
		}
		if err := policy.Require(ctx, q, actingEmail, c.CreatorEmail); err != nil {
			return err
		}

		if moved, err = q.ListGames(ctx, gameFilterFor(kind, name)); err != nil {
			return err
		}
		n, err := q.RepointGames(ctx, kind, name, domain.SentinelName)
		if err != nil {
			return err
		}
		if err := q.DeleteCategory(ctx, kind, name); err != nil {
			return err
		}

		result = DeleteResult{Name: c.Name, GamesReassigned: n}
		return nil
	})
	if err != nil {
		return nil, translate(err, kind, name)
	}

	s.reindex(kind, moved, domain.SentinelName)
	s.logger.Info(string(kind)+" deleted",
		"name", result.Name,
		"games_reassigned", result.GamesReassigned,
		"by", actingEmail,
	)
	return &result, nil
}

// reindex pushes games whose kind field now reads newName to the indexer.
func (s *CategoryService) reindex(kind domain.Kind, games []*domain.Game, newName string) {
	if len(games) == 0 {
		return
	}
	for _, g := range games {
		setCategoryName(g, kind, newName)
	}
	if err := s.indexer.IndexGames(games); err != nil {
		s.logger.Warn("failed to reindex games", "kind", kind, "count", len(games), "error", err)
	}
}

func gameFilterFor(kind domain.Kind, name string) store.GameFilter {
	if kind == domain.KindGenre {
		return store.GameFilter{GenreName: name}
	}
	return store.GameFilter{PublisherName: name}
}

func setCategoryName(g *domain.Game, kind domain.Kind, name string) {
	if kind == domain.KindGenre {
		g.GenreName = name
	} else {
		g.PublisherName = name
	}
}

// relatedNames returns the sorted distinct names of the kind opposite to
// kind among games.
func relatedNames(kind domain.Kind, games []*domain.Game) []string {
	other := domain.KindPublisher
	if kind == domain.KindPublisher {
		other = domain.KindGenre
	}

	names := make([]string, 0, len(games))
	for _, g := range games {
		names = append(names, g.CategoryName(other))
	}
	slices.Sort(names)
	return slices.Compact(names)
}
