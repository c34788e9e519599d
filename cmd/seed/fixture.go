package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/service"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Fixture is the YAML seed document.
type Fixture struct {
	// Owner creates every seeded record. It must be listed under users.
	Owner      string            `yaml:"owner"`
	Users      []FixtureUser     `yaml:"users"`
	Genres     []FixtureCategory `yaml:"genres"`
	Publishers []FixtureCategory `yaml:"publishers"`
	Games      []FixtureGame     `yaml:"games"`
}

type FixtureUser struct {
	Email     string `yaml:"email"`
	Name      string `yaml:"name"`
	Privilege string `yaml:"privilege"`
}

type FixtureCategory struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type FixtureGame struct {
	Name        string `yaml:"name"`
	Genre       string `yaml:"genre"`
	Publisher   string `yaml:"publisher"`
	ReleaseDate string `yaml:"release_date"`
	Description string `yaml:"description"`
	Rating      string `yaml:"rating"`
	MarketValue string `yaml:"market_value"`
	MVDate      string `yaml:"mv_date"`
}

// LoadFixture reads path, or the embedded default when path is empty.
func LoadFixture(path string) (*Fixture, error) {
	data := defaultFixture
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil { //#nosec G304 -- operator-supplied fixture
			return nil, fmt.Errorf("read fixture: %w", err)
		}
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	if f.Owner == "" {
		return errors.New("fixture: owner is required")
	}
	for _, u := range f.Users {
		if u.Email == f.Owner {
			return nil
		}
	}
	return fmt.Errorf("fixture: owner %q is not listed under users", f.Owner)
}

// Services are the writers the seeder goes through, so seeded rows obey the
// same rules as API writes.
type Services struct {
	Users      *service.UserService
	Categories *service.CategoryService
	Games      *service.GameService
}

// Report counts what a run did.
type Report struct {
	Users      int
	Genres     int
	Publishers int
	Games      int
	Skipped    int
}

// Seed applies f. Existing users keep their profile and existing records are
// skipped, so running it twice changes nothing.
func Seed(ctx context.Context, f *Fixture, svc Services, grant func(ctx context.Context, email string, p domain.Privilege) error, log *slog.Logger) (*Report, error) {
	var report Report

	for _, u := range f.Users {
		user, created, err := svc.Users.EnsureUser(ctx, u.Email, u.Name, "")
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Email, err)
		}
		if created {
			report.Users++
		}
		if p := domain.Privilege(u.Privilege); p != "" && p != user.Privilege {
			if !p.Valid() {
				return nil, fmt.Errorf("user %s: unknown privilege %q", u.Email, u.Privilege)
			}
			if err := grant(ctx, u.Email, p); err != nil {
				return nil, fmt.Errorf("user %s: %w", u.Email, err)
			}
		}
	}

	seedCategories := func(kind domain.Kind, items []FixtureCategory, counter *int) error {
		for _, c := range items {
			_, err := svc.Categories.Create(ctx, f.Owner, kind, service.CategoryInput{Name: c.Name, Description: c.Description})
			switch {
			case errors.Is(err, domainerrors.ErrNameConflict):
				report.Skipped++
			case err != nil:
				return fmt.Errorf("%s %s: %w", kind, c.Name, err)
			default:
				*counter++
			}
		}
		return nil
	}

	if err := seedCategories(domain.KindGenre, f.Genres, &report.Genres); err != nil {
		return nil, err
	}
	if err := seedCategories(domain.KindPublisher, f.Publishers, &report.Publishers); err != nil {
		return nil, err
	}

	for _, g := range f.Games {
		_, err := svc.Games.Create(ctx, f.Owner, service.GameInput{
			Name:            g.Name,
			Genre:           g.Genre,
			Publisher:       g.Publisher,
			ReleaseDate:     g.ReleaseDate,
			Description:     g.Description,
			Rating:          g.Rating,
			MarketValue:     g.MarketValue,
			MarketValueDate: g.MVDate,
		})
		switch {
		case errors.Is(err, domainerrors.ErrNameConflict):
			report.Skipped++
		case err != nil:
			return nil, fmt.Errorf("game %s: %w", g.Name, err)
		default:
			report.Games++
		}
	}

	log.Info("seed applied",
		"users", report.Users,
		"genres", report.Genres,
		"publishers", report.Publishers,
		"games", report.Games,
		"skipped", report.Skipped,
	)
	return &report, nil
}
