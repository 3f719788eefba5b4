package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/aretw0/learn/pkg/core"
)

// Defaults for Config.
const (
	DefaultSystemDir = ".learn"
	DefaultDBFolder  = "learn-db"
	DefaultInclude   = "**/*.md"
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	SystemDir string // index, locks and config, e.g. ".learn"
	DBFolder  string // sidecar records, relative to Path
	// Include and Exclude are doublestar globs over vault-relative paths.
	Include   []string
	Exclude   []string
	MustExist bool
	Logger    *slog.Logger
	// ErrorHandler receives non-fatal watcher errors.
	ErrorHandler func(error)
}

func (c Config) withDefaults() Config {
	if c.SystemDir == "" {
		c.SystemDir = DefaultSystemDir
	}
	if c.DBFolder == "" {
		c.DBFolder = DefaultDBFolder
	}
	if len(c.Include) == 0 {
		c.Include = []string{DefaultInclude}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Repository implements core.NoteRepository over a directory of Markdown notes.
type Repository struct {
	Path       string
	config     Config
	cache      *cache
	serializer MarkdownSerializer

	mu            sync.RWMutex
	watcherActive bool
	lastReconcile *time.Time
}

// NewRepository creates a new filesystem-backed note repository.
func NewRepository(config Config) *Repository {
	config = config.withDefaults()
	return &Repository{
		Path:   config.Path,
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
	}
}

// Initialize checks the vault and creates the system and sidecar folders.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
	}

	for _, dir := range []string{r.Path, r.SystemPath(), r.DBPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &core.StorageError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	return nil
}

// SystemPath is the absolute path of the system directory.
func (r *Repository) SystemPath() string {
	return filepath.Join(r.Path, r.config.SystemDir)
}

// DBPath is the absolute path of the sidecar folder.
func (r *Repository) DBPath() string {
	return filepath.Join(r.Path, filepath.FromSlash(r.config.DBFolder))
}

// resolvePath maps a vault-relative note path to its clean relative and
// absolute forms. A missing extension defaults to ".md".
func (r *Repository) resolvePath(ref string) (rel, abs string, err error) {
	rel = path.Clean(filepath.ToSlash(strings.TrimSpace(ref)))
	if rel == "." || rel == "" || path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", "", fmt.Errorf("invalid note path %q", ref)
	}
	if path.Ext(rel) == "" {
		rel += ".md"
	}
	return rel, filepath.Join(r.Path, filepath.FromSlash(rel)), nil
}

// Read returns a note's body and header metadata.
func (r *Repository) Read(ctx context.Context, ref string) (core.Note, error) {
	rel, abs, err := r.resolvePath(ref)
	if err != nil {
		return core.Note{}, err
	}

	data, info, err := readFile(abs)
	if err != nil {
		return core.Note{}, storageError("read", rel, err)
	}

	note, err := r.serializer.Parse(data)
	if err != nil {
		return core.Note{}, &core.StorageError{Op: "parse", Path: rel, Err: err}
	}
	note.Path = rel
	note.ModTime = info.ModTime()
	return note, nil
}

// ModTime returns the last modification time of a note.
func (r *Repository) ModTime(ctx context.Context, ref string) (time.Time, error) {
	rel, abs, err := r.resolvePath(ref)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return time.Time{}, storageError("stat", rel, err)
	}
	return info.ModTime(), nil
}

// Exists reports whether the note file exists.
func (r *Repository) Exists(ctx context.Context, ref string) bool {
	_, abs, err := r.resolvePath(ref)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// EnsureIdentifier returns the note's identifier, injecting a fresh one into
// its frontmatter when it has none. Only the identifier line is added; the
// rest of the file is kept byte for byte.
func (r *Repository) EnsureIdentifier(ctx context.Context, ref string) (string, error) {
	rel, abs, err := r.resolvePath(ref)
	if err != nil {
		return "", err
	}

	data, info, err := readFile(abs)
	if err != nil {
		return "", storageError("read", rel, err)
	}
	note, err := r.serializer.Parse(data)
	if err != nil {
		return "", &core.StorageError{Op: "parse", Path: rel, Err: err}
	}
	if id, ok := identifierOf(note.Metadata); ok {
		return id, nil
	}

	id := uuid.NewString()
	updated, err := injectIdentifier(data, id)
	if err != nil {
		return "", &core.StorageError{Op: "parse", Path: rel, Err: err}
	}
	if err := writeFileAtomic(abs, updated, info.Mode().Perm()); err != nil {
		return "", &core.StorageError{Op: "write", Path: rel, Err: err}
	}

	r.config.Logger.Info("added identifier to note", "path", rel, "id", id)
	return id, nil
}

// LookupIdentifier returns the note's identifier without modifying the note.
func (r *Repository) LookupIdentifier(ctx context.Context, ref string) (string, error) {
	note, err := r.Read(ctx, ref)
	if err != nil {
		return "", err
	}
	id, ok := identifierOf(note.Metadata)
	if !ok {
		return "", fmt.Errorf("note %s has no identifier: %w", note.Path, core.ErrNotFound)
	}
	return id, nil
}

// List returns every note of the vault matching the include and exclude
// globs, sorted by path. Unchanged notes are served from the index.
func (r *Repository) List(ctx context.Context) ([]core.NoteInfo, error) {
	if err := r.cache.Load(); err != nil {
		r.config.Logger.Warn("note index unreadable, rebuilding", "error", err)
	}

	var notes []core.NoteInfo
	seen := make(map[string]bool)

	err := filepath.WalkDir(r.Path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(r.Path, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && r.skipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !r.included(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtime := info.ModTime()
		seen[rel] = true

		if entry, hit := r.cache.Get(rel, mtime); hit {
			notes = append(notes, core.NoteInfo{Path: rel, ID: entry.ID, Title: entry.Title, ModTime: mtime})
			return nil
		}

		data, _, err := readFile(p)
		if err != nil {
			return nil
		}
		note, err := r.serializer.Parse(data)
		if err != nil {
			r.config.Logger.Debug("skipping unparseable note", "path", rel, "error", err)
			return nil
		}
		id, _ := identifierOf(note.Metadata)
		title := extractTitle(rel, []byte(note.Content))
		if t, ok := note.Metadata["title"].(string); ok && strings.TrimSpace(t) != "" {
			title = t
		}

		r.cache.Set(rel, &indexEntry{ID: id, Title: title, LastModified: mtime})
		notes = append(notes, core.NoteInfo{Path: rel, ID: id, Title: title, ModTime: mtime})
		return nil
	})
	if err != nil {
		return nil, &core.StorageError{Op: "list", Path: r.Path, Err: err}
	}

	r.cache.Prune(seen)
	if err := r.cache.Save(); err != nil {
		r.config.Logger.Warn("failed to save note index", "error", err)
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i].Path < notes[j].Path })
	return notes, nil
}

// Resolve maps a user query to a note path: an existing path first, then an
// exact title or file name match, then the best fuzzy match.
func (r *Repository) Resolve(ctx context.Context, query string) (string, error) {
	if rel, _, err := r.resolvePath(query); err == nil && r.Exists(ctx, rel) {
		return rel, nil
	}

	notes, err := r.List(ctx)
	if err != nil {
		return "", err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	names := make([]string, len(notes))
	for i, n := range notes {
		base := strings.TrimSuffix(path.Base(n.Path), path.Ext(n.Path))
		if strings.ToLower(base) == q || strings.ToLower(n.Title) == q {
			return n.Path, nil
		}
		names[i] = n.Path
	}

	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return "", fmt.Errorf("no note matches %q: %w", query, core.ErrNotFound)
	}
	return notes[matches[0].Index].Path, nil
}

// skipDir reports whether a vault-relative directory is never scanned.
func (r *Repository) skipDir(rel string) bool {
	base := path.Base(rel)
	if base == ".git" || strings.HasPrefix(base, ".") {
		return true
	}
	return rel == r.config.SystemDir || rel == path.Clean(r.config.DBFolder)
}

// included applies the include and exclude globs to a file path.
func (r *Repository) included(rel string) bool {
	if strings.HasPrefix(path.Base(rel), TempFilePrefix) {
		return false
	}
	for _, pattern := range r.config.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range r.config.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs-notes"
}

func readFile(abs string) ([]byte, os.FileInfo, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%s is a directory", abs)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, nil, err
	}
	return data, info, nil
}

// storageError maps missing files to core.ErrNotFound.
func storageError(op, p string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		err = core.ErrNotFound
	}
	return &core.StorageError{Op: op, Path: p, Err: err}
}
