package core

import (
	"context"
	"time"
)

// NoteRepository gives access to the notes of a vault.
// Paths are vault-relative and slash separated.
type NoteRepository interface {
	// Read returns the note body, header metadata and modification time.
	Read(ctx context.Context, path string) (Note, error)

	// List returns every note of the vault.
	List(ctx context.Context) ([]NoteInfo, error)

	// ModTime returns the last modification time of the note.
	ModTime(ctx context.Context, path string) (time.Time, error)

	// EnsureIdentifier returns the note's identifier, injecting a new one into
	// its header (and rewriting the note) when it has none.
	EnsureIdentifier(ctx context.Context, path string) (string, error)

	// LookupIdentifier returns the note's identifier without modifying it.
	// It returns ErrNotFound when the note carries no identifier.
	LookupIdentifier(ctx context.Context, path string) (string, error)
}

// RecordStore persists one NoteRecord sidecar per identifier.
type RecordStore interface {
	// Load reads the sidecar for id. It returns ErrNotFound when absent.
	Load(ctx context.Context, id string) (NoteRecord, error)

	// LoadOrCreate reads the sidecar for id or creates and persists an empty one.
	LoadOrCreate(ctx context.Context, id, sourcePath string) (NoteRecord, error)

	// Persist overwrites the sidecar for record.ID.
	Persist(ctx context.Context, record NoteRecord) error
}

// Completer is the external text-in/text-out completion function.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Distiller extracts structured content from a note and persists it into the record.
// On failure it returns the record unchanged.
type Distiller interface {
	Distill(ctx context.Context, noteContent string, record NoteRecord) (NoteRecord, error)
}

// QuizGenerator derives quiz questions from a record's distilled content and
// persists them. On failure it returns the record unchanged.
type QuizGenerator interface {
	Generate(ctx context.Context, record NoteRecord) (NoteRecord, []Question, error)
}

// Locker provides single-writer access per identifier.
type Locker interface {
	// TryLock acquires the lock for id or fails with ErrBusy.
	TryLock(id string) (unlock func(), err error)
}

// Watchable is implemented by repositories that can report note changes.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// Notifier displays transient user-facing notices.
type Notifier interface {
	Notify(level NoticeLevel, msg string)
}
