package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/learn/pkg/core"
	"github.com/aretw0/learn/pkg/git"
)

// RecordStoreConfig configures a RecordStore.
type RecordStoreConfig struct {
	// Dir holds one <id>.json sidecar per note.
	Dir string
	// Git, when set, commits every persisted sidecar.
	Git *git.Client
	// Message builds the commit message of a persisted record.
	Message func(core.NoteRecord) string
	Logger  *slog.Logger
	Clock   func() time.Time
}

// RecordStore implements core.RecordStore with JSON sidecar files.
// Writes are atomic; each persist overwrites the whole document.
type RecordStore struct {
	dir     string
	git     *git.Client
	message func(core.NoteRecord) string
	logger  *slog.Logger
	now     func() time.Time
}

// NewRecordStore creates a sidecar store rooted at cfg.Dir.
func NewRecordStore(cfg RecordStoreConfig) *RecordStore {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Message == nil {
		cfg.Message = func(r core.NoteRecord) string { return "learn: update " + r.ID }
	}
	return &RecordStore{dir: cfg.Dir, git: cfg.Git, message: cfg.Message, logger: cfg.Logger, now: cfg.Clock}
}

// Dir returns the sidecar folder.
func (s *RecordStore) Dir() string { return s.dir }

func (s *RecordStore) path(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("invalid record identifier %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Load reads the sidecar for id. It fails with core.ErrNotFound when absent.
// Stored questions that no longer validate are dropped with a warning.
func (s *RecordStore) Load(ctx context.Context, id string) (core.NoteRecord, error) {
	p, err := s.path(id)
	if err != nil {
		return core.NoteRecord{}, &core.StorageError{Op: "read", Path: id, Err: err}
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return core.NoteRecord{}, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.NoteRecord{}, &core.StorageError{Op: "read", Path: p, Err: err}
	}

	record, dropped, err := core.DecodeRecord(data)
	if err != nil {
		return core.NoteRecord{}, &core.StorageError{Op: "decode", Path: p, Err: err}
	}
	if record.ID != id {
		return core.NoteRecord{}, &core.StorageError{Op: "decode", Path: p, Err: fmt.Errorf("sidecar holds identifier %q", record.ID)}
	}
	for _, err := range dropped {
		s.logger.Warn("dropping stored question", "id", id, "error", err)
	}
	return record, nil
}

// LoadOrCreate reads the sidecar for id, or creates, persists and returns an
// empty record stamped with the current time. A moved note updates the
// returned SourcePath; it is written with the next persist.
func (s *RecordStore) LoadOrCreate(ctx context.Context, id, sourcePath string) (core.NoteRecord, error) {
	record, err := s.Load(ctx, id)
	if err == nil {
		if sourcePath != "" {
			record.SourcePath = sourcePath
		}
		return record, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.NoteRecord{}, err
	}

	record = core.NewRecord(id, sourcePath, s.now())
	if err := s.Persist(ctx, record); err != nil {
		return core.NoteRecord{}, err
	}
	s.logger.Debug("created record", "id", id, "path", sourcePath)
	return record, nil
}

// Persist overwrites the sidecar of record.ID. LastUpdated is written with
// millisecond resolution.
func (s *RecordStore) Persist(ctx context.Context, record core.NoteRecord) error {
	record.LastUpdated = core.Timestamp(record.LastUpdated)

	p, err := s.path(record.ID)
	if err != nil {
		return &core.StorageError{Op: "write", Path: record.ID, Err: err}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &core.StorageError{Op: "encode", Path: p, Err: err}
	}
	if err := writeFileAtomic(p, data, 0644); err != nil {
		return &core.StorageError{Op: "write", Path: p, Err: err}
	}

	if s.git != nil {
		if err := s.commit(ctx, p, record); err != nil {
			s.logger.Warn("failed to version record", "id", record.ID, "error", err)
		}
	}
	return nil
}

// commit records the sidecar in git. A write that left the file unchanged is
// not committed.
func (s *RecordStore) commit(ctx context.Context, p string, record core.NoteRecord) error {
	rel, err := filepath.Rel(s.git.WorkDir, p)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	unlock, err := s.git.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	changed, err := s.git.Changed(rel)
	if err != nil || !changed {
		return err
	}
	if err := s.git.Add(rel); err != nil {
		return err
	}
	return s.git.Commit(s.message(record), rel)
}

// ComponentType implements introspection.Component.
func (s *RecordStore) ComponentType() string {
	return "fs-records"
}
