package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/aretw0/ghostpub/pkg/adapters/lifecycle"
	"github.com/aretw0/ghostpub/pkg/core"
)

type stubWatcher struct {
	events  chan core.ChangeEvent
	err     error
	folders []string
}

func (w *stubWatcher) Watch(_ context.Context, folders ...string) (<-chan core.ChangeEvent, error) {
	w.folders = folders
	if w.err != nil {
		return nil, w.err
	}
	return w.events, nil
}

func TestSource_ForwardsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &stubWatcher{events: make(chan core.ChangeEvent, 1)}
	src := adapter.NewSource(w, "writing")
	require.NoError(t, src.Start(ctx))
	assert.Equal(t, []string{"writing"}, w.folders)

	w.events <- core.ChangeEvent{Type: core.ChangeWrite, Path: "writing/post.md"}

	select {
	case e := <-src.Events():
		change, ok := e.(core.ChangeEvent)
		require.True(t, ok)
		assert.Equal(t, "writing/post.md", change.Path)
		assert.Equal(t, core.ChangeWrite, change.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event not forwarded")
	}

	close(w.events)
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events not closed after the feed ended")
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &stubWatcher{events: make(chan core.ChangeEvent)}
	src := adapter.NewSource(w)
	require.NoError(t, src.Start(ctx))

	cancel()
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events not closed after cancel")
	}
}

func TestSource_WatchFailure(t *testing.T) {
	boom := errors.New("boom")
	src := adapter.NewSource(&stubWatcher{err: boom})

	err := src.Start(context.Background())
	assert.ErrorIs(t, err, boom)
	_, ok := <-src.Events()
	assert.False(t, ok)
}
