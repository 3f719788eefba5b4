package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/learn/pkg/core"
)

// options holds the internal configuration for a learn vault.
type options struct {
	logger          *slog.Logger
	completer       core.Completer
	notifier        core.Notifier
	systemDir       string
	dbFolder        string
	include         []string
	exclude         []string
	timeout         time.Duration
	concurrency     int
	alwaysRedistill bool
	config          map[string]interface{}
}

// Option defines a functional option for configuring a vault.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCompleter sets the completion function used to distill notes and
// generate quizzes. It is required.
func WithCompleter(c core.Completer) Option {
	return func(o *options) {
		o.completer = c
	}
}

// WithNotifier routes user-facing notices. Defaults to logging them.
func WithNotifier(n core.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithCompletionTimeout bounds every completion call. Zero keeps the default.
func WithCompletionTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithSystemDir sets the hidden directory for the index and locks (default ".learn").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithDBFolder sets the sidecar folder, relative to the vault (default "learn-db").
func WithDBFolder(name string) Option {
	return func(o *options) {
		o.dbFolder = name
	}
}

// WithInclude replaces the note globs (default "**/*.md").
func WithInclude(patterns ...string) Option {
	return func(o *options) {
		o.include = patterns
	}
}

// WithExclude adds globs of notes to ignore.
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithConcurrency bounds the number of notes summarized at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithAlwaysRedistill distills on every quiz even when the content is fresh.
func WithAlwaysRedistill(always bool) Option {
	return func(o *options) {
		o.alwaysRedistill = always
	}
}

// WithVersioning enables or disables committing sidecars to git.
// When unset, versioning follows the presence of a .git directory.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["versioning"] = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithDevSafety controls the sandbox used when running via `go run`.
// By default (true) the vault is re-rooted into a temporary directory so
// identifiers are never injected into real notes during development.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
