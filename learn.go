package learn

import (
	"log/slog"
	"time"

	"github.com/aretw0/learn/internal/platform"
	"github.com/aretw0/learn/pkg/adapters/llm"
	"github.com/aretw0/learn/pkg/core"
	"github.com/aretw0/learn/pkg/quiz"
)

// Version of the library and CLI.
const Version = "0.3.0"

// --- Types ---

// Vault bundles the quiz service with its filesystem adapters.
type Vault = platform.Vault

// Session is an interactive quiz run.
type Session = quiz.Session

// Option defines a functional option for opening a vault.
type Option = platform.Option

// --- Configuration ---

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithCompleter sets the completion function. Required.
func WithCompleter(c core.Completer) Option {
	return platform.WithCompleter(c)
}

// WithEndpoint uses an OpenAI-compatible endpoint as the completion function.
func WithEndpoint(baseURL, model string) Option {
	return platform.WithCompleter(llm.NewClient(llm.Config{BaseURL: baseURL, Model: model}))
}

// WithNotifier routes user-facing notices.
func WithNotifier(n core.Notifier) Option {
	return platform.WithNotifier(n)
}

// WithCompletionTimeout bounds every completion call.
func WithCompletionTimeout(d time.Duration) Option {
	return platform.WithCompletionTimeout(d)
}

// WithDBFolder sets the sidecar folder, relative to the vault.
func WithDBFolder(name string) Option {
	return platform.WithDBFolder(name)
}

// WithSystemDir sets the hidden directory for the index and locks.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithInclude replaces the note globs.
func WithInclude(patterns ...string) Option {
	return platform.WithInclude(patterns...)
}

// WithExclude adds globs of notes to ignore.
func WithExclude(patterns ...string) Option {
	return platform.WithExclude(patterns...)
}

// WithAlwaysRedistill distills on every quiz.
func WithAlwaysRedistill(always bool) Option {
	return platform.WithAlwaysRedistill(always)
}

// WithVersioning enables or disables committing sidecars to git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// --- Factory ---

// Open wires a vault at path.
func Open(path string, opts ...Option) (*Vault, error) {
	return platform.New(path, opts...)
}

// NewSession starts a quiz over a question set.
func NewSession(questions []core.Question) (*Session, error) {
	return quiz.New(questions)
}

// --- Utils ---

// FindVaultRoot looks upwards for a directory holding .learn, .obsidian or .git.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
