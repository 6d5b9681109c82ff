// Package lifecycle exposes repository change feeds as lifecycle event sources.
package lifecycle

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/gazelib/gazelib/pkg/core"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("change source already started")

// Option configures a change source.
type Option func(*changeSource)

// WithTypes forwards only changes of the given types. Without it every
// change is forwarded.
func WithTypes(types ...core.ChangeType) Option {
	return func(s *changeSource) {
		s.types = append(s.types, types...)
	}
}

type changeSource struct {
	changes <-chan core.Change
	out     chan lifecycle.Event
	types   []core.ChangeType
	started atomic.Bool
}

// NewSource adapts a change feed, as returned by core.Watchable, to a
// lifecycle.Source. Every event delivered on Events is a core.Change.
func NewSource(changes <-chan core.Change, opts ...Option) lifecycle.Source {
	s := &changeSource{
		changes: changes,
		out:     make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events is closed once the change feed closes or the context passed to
// Start ends.
func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start launches the forwarding goroutine and returns immediately.
func (s *changeSource) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	lifecycle.Go(ctx, s.forward)
	return nil
}

func (s *changeSource) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		var c core.Change
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-s.changes:
			if !ok {
				return nil
			}
			c = next
		}
		if !s.wants(c.Type) {
			continue
		}
		select {
		case s.out <- c:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *changeSource) wants(t core.ChangeType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}
