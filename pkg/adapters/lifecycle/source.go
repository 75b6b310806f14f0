// Package lifecycle exposes vault change events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/ghostpub/pkg/core"
)

// Watcher opens a change feed on a set of vault folders.
type Watcher interface {
	Watch(ctx context.Context, folders ...string) (<-chan core.ChangeEvent, error)
}

type changeSource struct {
	watcher Watcher
	folders []string
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source emitting core.ChangeEvent values for
// documents under folders. The feed is opened by Start; Events is closed
// once the feed ends or ctx is done.
func NewSource(watcher Watcher, folders ...string) lifecycle.Source {
	return &changeSource{
		watcher: watcher,
		folders: folders,
		out:     make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	events, err := s.watcher.Watch(ctx, s.folders...)
	if err != nil {
		close(s.out)
		return err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				// core.ChangeEvent has String()
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
