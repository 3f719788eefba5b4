package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/learn/pkg/core"
)

func TestStaleSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 4)
	in <- core.Event{Type: core.EventModify, Path: "fresh.md"}
	in <- core.Event{Type: core.EventModify, Path: "changed.md"}
	in <- core.Event{Type: core.EventCreate, Path: "broken.md"}
	in <- core.Event{Type: core.EventDelete, Path: "gone.md"}
	close(in)

	var failed []string
	check := func(ctx context.Context, p string) (string, error) {
		switch p {
		case "changed.md":
			return core.ReasonNoteChanged, nil
		case "broken.md":
			return "", errors.New("unreadable")
		}
		return "", nil
	}
	src := NewStaleSource(in, check, func(e core.Event, err error) { failed = append(failed, e.Path) })
	require.NoError(t, src.Start(ctx))

	var got []StaleEvent
	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case e, ok := <-src.Events():
			if !ok {
				done = true
				break
			}
			got = append(got, e.(StaleEvent))
		case <-timeout:
			t.Fatal("source did not close")
		}
	}

	require.Len(t, got, 2)
	assert.Equal(t, "changed.md", got[0].Path)
	assert.Equal(t, core.ReasonNoteChanged, got[0].Reason)
	assert.Equal(t, "stale changed.md ("+core.ReasonNoteChanged+")", got[0].String())
	assert.Equal(t, "removed gone.md", got[1].String())
	assert.Equal(t, []string{"broken.md"}, failed)
}
