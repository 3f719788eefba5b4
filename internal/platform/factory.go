package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/introspection"

	"github.com/aretw0/learn/pkg/adapters/fs"
	"github.com/aretw0/learn/pkg/core"
	"github.com/aretw0/learn/pkg/distill"
)

// ErrNoCompleter is returned by New when no completion function was configured.
var ErrNoCompleter = errors.New("no completer configured")

// Vault bundles the service with the adapters it was wired from.
type Vault struct {
	Service *core.Service
	Notes   *fs.Repository
	Records *fs.RecordStore
	Locker  *fs.Locker
	// Completer is the configured completion function.
	Completer core.Completer
}

// New opens the vault at path and wires the quiz service:
//
//	vault, err := platform.New("./notes", platform.WithCompleter(llm.NewClient(llm.Config{})))
func New(path string, opts ...Option) (*Vault, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.completer == nil {
		return nil, ErrNoCompleter
	}

	notes, err := Init(path, opts...)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	client, versioned := versioning(notes.Path, o)
	records := fs.NewRecordStore(fs.RecordStoreConfig{
		Dir:     notes.DBPath(),
		Git:     client,
		Logger:  logger,
		Message: commitMessage,
	})
	if versioned {
		logger.Debug("sidecar versioning enabled", "path", notes.Path)
	}

	locker := fs.NewLocker(filepath.Join(notes.SystemPath(), "locks"))

	distillOpts := []distill.Option{distill.WithLogger(logger)}
	if o.timeout > 0 {
		distillOpts = append(distillOpts, distill.WithTimeout(o.timeout))
	}

	service := core.NewService(core.ServiceConfig{
		Notes:           notes,
		Records:         records,
		Distiller:       distill.NewDistiller(o.completer, records, distillOpts...),
		Generator:       distill.NewQuizGenerator(o.completer, records, distillOpts...),
		Locker:          locker,
		Notifier:        o.notifier,
		Logger:          logger,
		AlwaysRedistill: o.alwaysRedistill,
		Concurrency:     o.concurrency,
	})

	return &Vault{
		Service:   service,
		Notes:     notes,
		Records:   records,
		Locker:    locker,
		Completer: o.completer,
	}, nil
}

// Components lists the introspectable parts of the vault, keyed by component type.
func (v *Vault) Components() map[string]introspection.Introspectable {
	parts := map[string]introspection.Introspectable{
		v.Service.ComponentType(): v.Service,
		v.Notes.ComponentType():   v.Notes,
		v.Records.ComponentType(): v.Records,
	}
	if c, ok := v.Completer.(interface {
		introspection.Introspectable
		introspection.Component
	}); ok {
		parts[c.ComponentType()] = c
	}
	return parts
}

// commitMessage describes a sidecar update in Conventional Commit form.
func commitMessage(record core.NoteRecord) string {
	subject := fmt.Sprintf("chore(learn-db): update %s", record.ID)
	if record.SourcePath != "" {
		subject = fmt.Sprintf("chore(learn-db): update %s", record.SourcePath)
	}
	return fmt.Sprintf("%s\n\nnote: %s\nid: %s\nquestions: %d", subject, record.SourcePath, record.ID, len(record.Quiz))
}
