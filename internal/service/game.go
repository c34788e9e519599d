package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/id"
	"github.com/icgdb/icgdb-server/internal/media/images"
	"github.com/icgdb/icgdb-server/internal/policy"
	"github.com/icgdb/icgdb-server/internal/sanitize"
	"github.com/icgdb/icgdb-server/internal/store"
	"github.com/icgdb/icgdb-server/internal/validation"
)

// DefaultMaxPictureBytes is the upload limit when none is configured.
const DefaultMaxPictureBytes int64 = 100 << 10

// GameInput carries the writable fields of a game. On create, Name is
// required and empty Genre/Publisher mean "Other". On update, only
// non-empty fields are applied.
type GameInput struct {
	Name            string `json:"name" validate:"max=80,excludesall=/"`
	Genre           string `json:"genre" validate:"max=80"`
	Publisher       string `json:"publisher" validate:"max=80"`
	ReleaseDate     string `json:"release_date" validate:"isodate"`
	Description     string `json:"description" validate:"max=500"`
	Rating          string `json:"rating" validate:"rating"`
	MarketValue     string `json:"market_value" validate:"money"`
	MarketValueDate string `json:"mv_date" validate:"isodate"`
}

func (in *GameInput) clean() {
	in.Name = sanitize.Name(in.Name)
	in.Genre = sanitize.Name(in.Genre)
	in.Publisher = sanitize.Name(in.Publisher)
	in.ReleaseDate = sanitize.Text(in.ReleaseDate)
	in.Description = sanitize.Text(in.Description)
	in.Rating = sanitize.Text(in.Rating)
	in.MarketValue = sanitize.Text(in.MarketValue)
	in.MarketValueDate = sanitize.Text(in.MarketValueDate)
}

// GameService manages games and their pictures.
type GameService struct {
	store     store.Store
	validator *validation.Validator
	indexer   GameIndexer
	pictures  *images.Storage
	maxUpload int64
	logger    *slog.Logger
}

// GameServiceConfig holds the optional collaborators of a GameService.
type GameServiceConfig struct {
	Indexer         GameIndexer
	Pictures        *images.Storage
	MaxPictureBytes int64
	Logger          *slog.Logger
}

// NewGameService creates a game service.
func NewGameService(s store.Store, v *validation.Validator, cfg GameServiceConfig) *GameService {
	maxUpload := cfg.MaxPictureBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxPictureBytes
	}
	return &GameService{
		store:     s,
		validator: v,
		indexer:   indexerOrNoop(cfg.Indexer),
		pictures:  cfg.Pictures,
		maxUpload: maxUpload,
		logger:    loggerOrDiscard(cfg.Logger),
	}
}

// Create adds a game owned by actingEmail.
func (s *GameService) Create(ctx context.Context, actingEmail string, in GameInput) (*domain.Game, error) {
	if err := requireLogin(actingEmail); err != nil {
		return nil, err
	}
	in.clean()
	if in.Name == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"name": "is required"})
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if in.Genre == "" {
		in.Genre = domain.SentinelName
	}
	if in.Publisher == "" {
		in.Publisher = domain.SentinelName
	}

	recordID, err := id.Generate(id.PrefixGame)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not generate id")
	}
	g := &domain.Game{
		ID:            recordID,
		Name:          in.Name,
		GenreName:     in.Genre,
		PublisherName: in.Publisher,
		CreatorEmail:  actingEmail,
	}
	if err := applyGameInput(g, in); err != nil {
		return nil, err
	}
	g.InitTimestamps()

	err = s.store.InTx(ctx, func(q store.Queries) error {
		if err := ensureNameFree(ctx, q, domain.KindGame, g.Name); err != nil {
			return err
		}
		if err := requireCategories(ctx, q, g); err != nil {
			return err
		}
		return q.CreateGame(ctx, g)
	})
	if err != nil {
		return nil, translate(err, domain.KindGame, in.Name)
	}

	s.index(g)
	s.logger.Info("game created", "name", g.Name, "genre", g.GenreName, "publisher", g.PublisherName, "creator", actingEmail)
	return g, nil
}

// Get returns a game by exact name.
func (s *GameService) Get(ctx context.Context, name string) (*domain.Game, error) {
	g, err := s.store.GetGame(ctx, name)
	if err != nil {
		return nil, translate(err, domain.KindGame, name)
	}
	return g, nil
}

// List returns games ordered by name, optionally filtered.
func (s *GameService) List(ctx context.Context, filter store.GameFilter) ([]*domain.Game, error) {
	games, err := s.store.ListGames(ctx, filter)
	if err != nil {
		return nil, translate(err, domain.KindGame, "")
	}
	return games, nil
}

// Update applies the non-empty fields of in to the named game. Only the
// creator or a superuser may do this.
func (s *GameService) Update(ctx context.Context, actingEmail, name string, in GameInput) (*domain.Game, error) {
	if err := requireLogin(actingEmail); err != nil {
		return nil, err
	}
	in.clean()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var updated *domain.Game
	err := s.store.InTx(ctx, func(q store.Queries) error {
		g, err := q.GetGame(ctx, name)
		if err != nil {
			return err
		}
		if err := policy.Require(ctx, q, actingEmail, g.CreatorEmail); err != nil {
			return err
		}

		if in.Name != "" && in.Name != g.Name {
			if err := ensureNameFree(ctx, q, domain.KindGame, in.Name); err != nil {
				return err
			}
			g.Name = in.Name
		}
		if in.Genre != "" {
			g.GenreName = in.Genre
		}
		if in.Publisher != "" {
			g.PublisherName = in.Publisher
		}
		if err := applyGameInput(g, in); err != nil {
			return err
		}
		if err := requireCategories(ctx, q, g); err != nil {
			return err
		}

		g.Touch()
		if err := q.UpdateGame(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, translate(err, domain.KindGame, name)
	}

	s.index(updated)
	s.logger.Info("game updated", "name", updated.Name, "previous_name", name, "by", actingEmail)
	return updated, nil
}

// Delete removes the named game and its picture. Only the creator or a
// superuser may do this.
func (s *GameService) Delete(ctx context.Context, actingEmail, name string) error {
	if err := requireLogin(actingEmail); err != nil {
		return err
	}

	var deleted *domain.Game
	err := s.store.InTx(ctx, func(q store.Queries) error {
		g, err := q.GetGame(ctx, name)
		if err != nil {
			return err
		}
		if err := policy.Require(ctx, q, actingEmail, g.CreatorEmail); err != nil {
			return err
		}
		if err := q.DeleteGame(ctx, g.ID); err != nil {
			return err
		}
		deleted = g
		return nil
	})
	if err != nil {
		return translate(err, domain.KindGame, name)
	}

	if err := s.indexer.DeleteGame(deleted.ID); err != nil {
		s.logger.Warn("failed to remove game from index", "id", deleted.ID, "error", err)
	}
	s.removePicture(deleted.PictureRef)
	s.logger.Info("game deleted", "name", deleted.Name, "by", actingEmail)
	return nil
}

// SetPicture stores an uploaded picture for the named game and records its
// file name and BlurHash. Only the creator or a superuser may do this.
func (s *GameService) SetPicture(ctx context.Context, actingEmail, name, fileName string, data []byte) (*domain.Game, error) {
	if err := requireLogin(actingEmail); err != nil {
		return nil, err
	}
	if s.pictures == nil {
		return nil, domainerrors.Unavailable("Picture uploads are not enabled.")
	}

	upload, err := images.Check(fileName, data, s.maxUpload)
	switch {
	case errors.Is(err, images.ErrTooLarge):
		return nil, domainerrors.Validationf("Pictures may be at most %d bytes.", s.maxUpload)
	case errors.Is(err, images.ErrUnsupportedType):
		return nil, domainerrors.Validationf("Pictures must be one of: %s.", images.AllowedExtensions)
	case err != nil:
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not read picture")
	}

	hash, err := images.ComputeBlurHash(upload.Data)
	if err != nil {
		s.logger.Warn("failed to compute blurhash", "game", name, "error", err)
		hash = ""
	}

	var (
		updated  *domain.Game
		previous string
		stored   string
	)
	err = s.store.InTx(ctx, func(q store.Queries) error {
		g, err := q.GetGame(ctx, name)
		if err != nil {
			return err
		}
		if err := policy.Require(ctx, q, actingEmail, g.CreatorEmail); err != nil {
			return err
		}

		ref, err := images.FileName(g.ID, upload.Ext)
		if err != nil {
			return err
		}
		if err := s.pictures.Save(ref, upload.Data); err != nil {
			return err
		}
		stored = ref

		previous = g.PictureRef
		g.PictureRef = stored
		g.PictureBlurHash = hash
		g.Touch()
		if err := q.UpdateGame(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		s.removePicture(stored)
		return nil, translate(err, domain.KindGame, name)
	}

	s.removePicture(previous)
	s.index(updated)
	s.logger.Info("game picture stored", "name", updated.Name, "file", stored, "bytes", len(upload.Data))
	return updated, nil
}

func (s *GameService) index(g *domain.Game) {
	if err := s.indexer.IndexGame(g); err != nil {
		s.logger.Warn("failed to index game", "id", g.ID, "error", err)
	}
}

func (s *GameService) removePicture(ref string) {
	if ref == "" || s.pictures == nil {
		return
	}
	if err := s.pictures.Delete(ref); err != nil {
		s.logger.Warn("failed to delete picture", "file", ref, "error", err)
	}
}

// applyGameInput copies the optional fields of in onto g. Empty fields are
// left alone.
func applyGameInput(g *domain.Game, in GameInput) error {
	if in.ReleaseDate != "" {
		d, err := domain.ParseDate(in.ReleaseDate)
		if err != nil {
			return domainerrors.Validationf("release_date %q is not a date", in.ReleaseDate)
		}
		g.ReleaseDate = d
	}
	if in.MarketValueDate != "" {
		d, err := domain.ParseDate(in.MarketValueDate)
		if err != nil {
			return domainerrors.Validationf("mv_date %q is not a date", in.MarketValueDate)
		}
		g.MarketValueDate = d
	}
	if in.Description != "" {
		g.Description = in.Description
	}
	if in.Rating != "" {
		g.Rating = in.Rating
	}
	if in.MarketValue != "" {
		g.MarketValue = in.MarketValue
	}
	return nil
}

// requireCategories rejects a game whose genre or publisher does not exist.
func requireCategories(ctx context.Context, q store.Queries, g *domain.Game) error {
	for _, kind := range []domain.Kind{domain.KindGenre, domain.KindPublisher} {
		name := g.CategoryName(kind)
		ok, err := q.NameExists(ctx, kind, name)
		if err != nil {
			return err
		}
		if !ok {
			return domainerrors.Validationf("%s %q does not exist", kind.Label(), name)
		}
	}
	return nil
}
