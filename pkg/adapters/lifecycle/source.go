// Package lifecycle bridges note change events to github.com/aretw0/lifecycle.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/learn/pkg/core"
)

// CheckFunc returns the reason a note needs distilling, or "" when it is fresh.
type CheckFunc func(ctx context.Context, notePath string) (string, error)

// StaleEvent reports a note whose distilled content is out of date.
// Deleted notes are reported with an empty Reason.
type StaleEvent struct {
	core.Event
	Reason string
}

func (e StaleEvent) String() string {
	if e.Type == core.EventDelete {
		return fmt.Sprintf("removed %s", e.Path)
	}
	return fmt.Sprintf("stale %s (%s)", e.Path, e.Reason)
}

type staleSource struct {
	events <-chan core.Event
	check  CheckFunc
	onErr  func(core.Event, error)
	out    chan lifecycle.Event
}

// NewStaleSource creates a lifecycle.Source that emits a StaleEvent for every
// change leaving a note stale. Fresh notes are dropped; check errors go to
// onErr, which may be nil.
func NewStaleSource(events <-chan core.Event, check CheckFunc, onErr func(core.Event, error)) lifecycle.Source {
	return &staleSource{
		events: events,
		check:  check,
		onErr:  onErr,
		out:    make(chan lifecycle.Event),
	}
}

func (s *staleSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *staleSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				stale, emit := s.classify(ctx, e)
				if !emit {
					continue
				}
				select {
				case s.out <- stale:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func (s *staleSource) classify(ctx context.Context, e core.Event) (StaleEvent, bool) {
	if e.Type == core.EventDelete {
		return StaleEvent{Event: e}, true
	}
	reason, err := s.check(ctx, e.Path)
	if err != nil {
		if s.onErr != nil {
			s.onErr(e, err)
		}
		return StaleEvent{}, false
	}
	return StaleEvent{Event: e, Reason: reason}, reason != ""
}
