package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/icgdb/icgdb-server/internal/domain"
)

const batchSize = 500

// Index wraps a Bleve index of games. Safe for concurrent use; Rebuild
// takes an exclusive lock.
type Index struct {
	index  bleve.Index
	path   string // empty for in-memory indexes
	logger *slog.Logger
	mu     sync.RWMutex

	// fresh is true when the index was created on open and needs a full load.
	fresh bool
}

// Options configures the index.
type Options struct {
	// DataPath is the directory holding games.bleve. Empty keeps the index in memory.
	DataPath string
	Logger   *slog.Logger
}

// Open opens the index under opts.DataPath, recreating it when it is
// missing, unreadable or built with an older mapping.
func Open(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.DataPath == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &Index{index: idx, logger: logger, fresh: true}, nil
	}

	indexPath := filepath.Join(opts.DataPath, "games.bleve")
	versionPath := filepath.Join(opts.DataPath, "games.bleve.version")

	var idx bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath) //#nosec G304 -- derived from configured data path
		switch {
		case readErr != nil || string(version) != mappingVersion:
			logger.Info("search index mapping changed, rebuilding",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		default:
			idx, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
				idx = nil
			}
		}
	}

	fresh := idx == nil
	if fresh {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		var err error
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	}

	return &Index{index: idx, path: indexPath, logger: logger, fresh: fresh}, nil
}

// Fresh reports whether the index was created empty on open.
func (x *Index) Fresh() bool {
	return x.fresh
}

// Close releases the index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}

// IndexGame adds or replaces one game.
func (x *Index) IndexGame(g *domain.Game) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.Index(g.ID, NewGameDocument(g).toMap())
}

// IndexGames adds or replaces games in batches.
func (x *Index) IndexGames(games []*domain.Game) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.indexLocked(games)
}

func (x *Index) indexLocked(games []*domain.Game) error {
	for start := 0; start < len(games); start += batchSize {
		end := min(start+batchSize, len(games))

		batch := x.index.NewBatch()
		for _, g := range games[start:end] {
			if err := batch.Index(g.ID, NewGameDocument(g).toMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", g.ID, err)
			}
		}
		if err := x.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteGame removes a game by ID.
func (x *Index) DeleteGame(id string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.Delete(id)
}

// Count returns the number of indexed games.
func (x *Index) Count() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.DocCount()
}

// Rebuild replaces the whole index with games.
func (x *Index) Rebuild(games []*domain.Game) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		idx bleve.Index
		err error
	)
	if x.path == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(x.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		idx, err = bleve.New(x.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	x.index = idx
	x.fresh = false

	if err := x.indexLocked(games); err != nil {
		return err
	}
	x.logger.Info("rebuilt search index", "games", len(games))
	return nil
}
