package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/do/v2"

	"github.com/icgdb/icgdb-server/internal/config"
	"github.com/icgdb/icgdb-server/internal/logger"
	"github.com/icgdb/icgdb-server/internal/search"
	"github.com/icgdb/icgdb-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// Index is nil when search is disabled. Background work started with Go is
// cancelled and joined before the index closes.
type SearchIndexHandle struct {
	*search.Index

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newSearchIndexHandle(index *search.Index) *SearchIndexHandle {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchIndexHandle{Index: index, ctx: ctx, cancel: cancel}
}

// Go runs fn in the background with a context cancelled by Shutdown.
// It is a no-op once Shutdown has started.
func (h *SearchIndexHandle) Go(fn func(ctx context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn(h.ctx)
	}()
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()

	if h.Index == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve game index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Search disabled by configuration")
		return newSearchIndexHandle(nil), nil
	}

	index, err := search.Open(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.Count()
	log.Info("Search index initialized", "documents", docCount, "fresh", index.Fresh())

	return newSearchIndexHandle(index), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.Index, storeHandle.Store, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// is new or empty. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !searchService.Enabled() {
		return
	}

	indexHandle.Go(func(ctx context.Context) {
		err := searchService.EnsureIndexed(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			log.Info("Search reindex cancelled by shutdown")
		case err != nil:
			log.Error("Search reindex failed", "error", err)
		}
	})
}
