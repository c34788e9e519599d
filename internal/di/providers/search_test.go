package providers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icgdb/icgdb-server/internal/search"
)

func TestSearchIndexHandle_ShutdownJoinsBackgroundWork(t *testing.T) {
	index, err := search.Open(search.Options{})
	require.NoError(t, err)
	h := newSearchIndexHandle(index)

	started := make(chan struct{})
	var finished atomic.Bool
	h.Go(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		_, err := index.Count()
		assert.NoError(t, err, "the index stays open until background work returns")
		finished.Store(true)
	})
	<-started

	require.NoError(t, h.Shutdown())
	assert.True(t, finished.Load())
}

func TestSearchIndexHandle_GoAfterShutdownIsDropped(t *testing.T) {
	h := newSearchIndexHandle(nil)
	require.NoError(t, h.Shutdown())

	var ran atomic.Bool
	h.Go(func(context.Context) { ran.Store(true) })
	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran.Load())
}
