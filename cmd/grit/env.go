package main

import (
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/repo"
)

// Environment variables honored by the CLI. They are resolved here, once,
// and the core packages only ever see the resulting paths.
const (
	envGitDir    = "GIT_DIR"
	envObjectDir = "GIT_OBJECT_DIRECTORY"
)

func gitDirName() string {
	if name := os.Getenv(envGitDir); name != "" {
		return name
	}
	return repo.DefaultGitDirName
}

func objectDirName() string {
	if name := os.Getenv(envObjectDir); name != "" {
		return name
	}
	return repo.DefaultObjectDirName
}

// openRepo discovers the repository directory upward from the current
// directory and opens it with the environment's directory overrides
// applied.
func openRepo() (*repo.Repo, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	gitDir, err := repo.Discover(cwd, gitDirName())
	if err != nil {
		return nil, err
	}
	return repo.Open(gitDir, filepath.Join(gitDir, objectDirName()))
}
