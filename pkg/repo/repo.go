// Package repo ties the codec packages to an on-disk repository layout.
// Every entry point receives resolved directory paths or names; nothing
// in this package reads process environment.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
)

const (
	// DefaultGitDirName is the repository directory searched for when the
	// caller supplies no override.
	DefaultGitDirName = ".git"
	// DefaultObjectDirName is the object directory under the git dir when
	// the caller supplies no override.
	DefaultObjectDirName = "objects"
)

// Repo represents an opened repository.
type Repo struct {
	GitDir    string        // resolved repository directory
	ObjectDir string        // resolved object directory
	Store     *object.Store // content-addressed object store
	Config    *Config       // repository configuration
}

// Discover searches upward from start for a directory named gitDirName
// and returns its path. The name is a plain parameter; resolving it from
// the environment is the CLI layer's job.
func Discover(start, gitDirName string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("discover: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, gitDirName)
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return gitDir, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("not a repository (or any of the parent directories): %s", gitDirName)
		}
		cur = parent
	}
}

// Open opens the repository at gitDir. An empty objectDir defaults to the
// "objects" subdirectory. The store's compression level comes from the
// repository config; a missing config file means defaults.
func Open(gitDir, objectDir string) (*Repo, error) {
	if objectDir == "" {
		objectDir = filepath.Join(gitDir, DefaultObjectDirName)
	}

	cfg, err := readConfig(gitDir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", gitDir, err)
	}

	store := object.NewStore(objectDir)
	store.SetCompression(cfg.Core.Compression)

	return &Repo{
		GitDir:    gitDir,
		ObjectDir: objectDir,
		Store:     store,
		Config:    cfg,
	}, nil
}
