// Package main loads a YAML catalog fixture into the ICGDB database.
//
// Usage:
//
//	DATA_PATH=~/.icgdb go run ./cmd/seed
//	DATA_PATH=~/.icgdb go run ./cmd/seed -file catalog.yaml
//
// The search index is updated when it can be opened; while the server holds
// it, the server rebuilds on its next start instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/icgdb/icgdb-server/internal/config"
	"github.com/icgdb/icgdb-server/internal/logger"
	"github.com/icgdb/icgdb-server/internal/search"
	"github.com/icgdb/icgdb-server/internal/service"
	"github.com/icgdb/icgdb-server/internal/store/sqlite"
	"github.com/icgdb/icgdb-server/internal/validation"
)

var fixtureFile = flag.String("file", "", "YAML fixture to load (default: embedded catalog)")

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	fixture, err := LoadFixture(*fixtureFile)
	if err != nil {
		log.Fatal("Failed to load fixture", "error", err)
	}

	s, err := sqlite.Open(cfg.Data.DatabasePath(), log.Logger)
	if err != nil {
		log.Fatal("Failed to open database", "path", cfg.Data.DatabasePath(), "error", err)
	}
	defer s.Close()

	var index *search.Index
	if cfg.Search.Enabled {
		index, err = search.Open(search.Options{DataPath: cfg.Data.BasePath, Logger: log.Logger})
		if err != nil {
			log.Warn("Search index unavailable, skipping indexing", "error", err)
			index = nil
		} else {
			defer index.Close()
		}
	}

	v := validation.New()
	searchService := service.NewSearchService(index, s, log.Logger)
	svc := Services{
		Users:      service.NewUserService(s, log.Logger),
		Categories: service.NewCategoryService(s, v, searchService, log.Logger),
		Games:      service.NewGameService(s, v, service.GameServiceConfig{Indexer: searchService, Logger: log.Logger}),
	}

	ctx := context.Background()
	report, err := Seed(ctx, fixture, svc, s.SetUserPrivilege, log.Logger)
	if err != nil {
		log.Fatal("Seed failed", "error", err)
	}

	fmt.Printf("Seeded %d users, %d genres, %d publishers, %d games (%d already present)\n",
		report.Users, report.Genres, report.Publishers, report.Games, report.Skipped)
}
