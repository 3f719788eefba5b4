package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/aretw0/learn/internal/platform"
	"github.com/aretw0/learn/pkg/core"
)

// noticePrinter shows notices on stderr, or only logs them while a
// full-screen view owns the terminal.
type noticePrinter struct {
	w     io.Writer
	muted atomic.Bool
}

func (p *noticePrinter) Notify(level core.NoticeLevel, msg string) {
	if p.muted.Load() {
		slog.Debug("notice", "message", msg)
		return
	}
	switch level {
	case core.NoticeError:
		fmt.Fprintf(p.w, "error: %s\n", msg)
	case core.NoticeWarn:
		fmt.Fprintf(p.w, "warning: %s\n", msg)
	default:
		fmt.Fprintln(p.w, msg)
	}
}

var notices = &noticePrinter{w: os.Stderr}

// openVault wires the vault described by the loaded settings.
func openVault(opts ...platform.Option) *platform.Vault {
	all := append(settings.Options(slog.Default()), platform.WithNotifier(notices))
	vault, err := platform.New(settings.Vault, append(all, opts...)...)
	if err != nil {
		fatal("Failed to open vault", err)
	}
	return vault
}

// resolveNote maps a user query (path, file name, title or fuzzy text) to a note.
func resolveNote(ctx context.Context, vault *platform.Vault, query string) string {
	path, err := vault.Notes.Resolve(ctx, query)
	if err != nil {
		fatal("Note not found", err)
	}
	return path
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
