package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitOptions controls repository scaffolding. Zero values mean the
// defaults: a ".git" directory with an "objects" subdirectory and an
// initial branch named "main".
type InitOptions struct {
	GitDirName    string
	ObjectDirName string
	InitialBranch string
	Bare          bool
}

// Init creates a new repository under path: the git directory itself,
// the object directory, refs/{heads,tags,remotes}/, HEAD pointing at the
// initial branch, and config.toml. For a bare repository the git
// directory is path itself. Returns an error if a repository already
// exists there.
func Init(path string, opts InitOptions) (*Repo, error) {
	if opts.GitDirName == "" {
		opts.GitDirName = DefaultGitDirName
	}
	if opts.ObjectDirName == "" {
		opts.ObjectDirName = DefaultObjectDirName
	}
	if opts.InitialBranch == "" {
		opts.InitialBranch = "main"
	}

	gitDir := filepath.Join(path, opts.GitDirName)
	if opts.Bare {
		gitDir = path
	}

	// Fail if a repository already exists. HEAD is the marker: the git
	// directory itself may legitimately pre-exist for bare layouts.
	headPath := filepath.Join(gitDir, "HEAD")
	if _, err := os.Stat(headPath); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", gitDir)
	}

	objectDir := filepath.Join(gitDir, opts.ObjectDirName)
	dirs := []string{
		objectDir,
		filepath.Join(gitDir, "refs", "heads"),
		filepath.Join(gitDir, "refs", "tags"),
		filepath.Join(gitDir, "refs", "remotes"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	head := fmt.Sprintf("ref: refs/heads/%s\n", opts.InitialBranch)
	if err := os.WriteFile(headPath, []byte(head), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	r, err := Open(gitDir, objectDir)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Core.Bare = opts.Bare
	if err := r.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}
