package platform

import (
	"context"
	"path/filepath"

	"github.com/aretw0/learn/pkg/adapters/fs"
	"github.com/aretw0/learn/pkg/git"
)

// Init prepares the vault at path: resolves it, creates the system and
// sidecar folders and returns the note repository.
func Init(path string, opts ...Option) (*fs.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	repo := initFS(path, o)
	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS builds the filesystem note repository from options.
func initFS(path string, o *options) *fs.Repository {
	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	useTemp := tempDir || (IsDevRun() && devSafety)
	resolved := ResolveVaultPath(path, useTemp)

	if o.logger != nil && useTemp && filepath.Clean(resolved) != filepath.Clean(path) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}

	return fs.NewRepository(fs.Config{
		Path:         resolved,
		SystemDir:    o.systemDir,
		DBFolder:     o.dbFolder,
		Include:      o.include,
		Exclude:      o.exclude,
		MustExist:    mustExist,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
}

// versioning decides whether sidecars are committed. Unless configured it
// follows the vault: a git work tree with git installed.
func versioning(vault string, o *options) (*git.Client, bool) {
	enabled, set := o.config["versioning"].(bool)
	if set && !enabled {
		return nil, false
	}

	client := git.NewClient(vault, git.DefaultLockName, o.logger)
	if !git.IsInstalled() {
		if set && o.logger != nil {
			o.logger.Warn("versioning requested but git is not installed")
		}
		return nil, false
	}
	if !client.IsRepo() {
		if !set {
			return nil, false
		}
		if err := client.Init(); err != nil {
			if o.logger != nil {
				o.logger.Warn("failed to initialize git repository", "path", vault, "error", err)
			}
			return nil, false
		}
	}
	return client, true
}
