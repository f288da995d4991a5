// Package refs enumerates the named pointers stored under a repository's
// refs/ tree and resolves the symbolic HEAD pointer. It depends only on a
// resolved repository directory path; environment resolution is the
// caller's concern.
package refs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ref is a named pointer to an object hash. Name is the slash-separated
// path relative to the repository directory, e.g. "refs/heads/main".
type Ref struct {
	Name string
	Hash string
}

// Options selects which ref categories to collect. With neither Heads nor
// Tags set, heads, tags, remotes, and the stash ref are all collected.
type Options struct {
	Heads       bool
	Tags        bool
	IncludeHead bool
}

// Collect walks the requested ref directories under gitDir and returns
// the refs found, sorted lexicographically by name. Missing directories
// contribute zero refs. The synthetic "HEAD" entry, when requested, sorts
// before every "refs/..." name by plain byte order.
func Collect(gitDir string, opts Options) ([]Ref, error) {
	collected := make(map[string]string)

	var dirs []string
	stash := false
	switch {
	case opts.Heads || opts.Tags:
		if opts.Heads {
			dirs = append(dirs, "refs/heads")
		}
		if opts.Tags {
			dirs = append(dirs, "refs/tags")
		}
	default:
		dirs = []string{"refs/heads", "refs/tags", "refs/remotes"}
		stash = true
	}

	for _, dir := range dirs {
		if err := walkRefDir(gitDir, dir, collected); err != nil {
			return nil, err
		}
	}
	if stash {
		hash, err := readRefFile(filepath.Join(gitDir, "refs", "stash"))
		if err == nil {
			collected["refs/stash"] = hash
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read refs/stash: %w", err)
		}
	}

	if opts.IncludeHead {
		hash, err := resolveHead(gitDir, collected)
		if err != nil {
			return nil, err
		}
		collected["HEAD"] = hash
	}

	refs := make([]Ref, 0, len(collected))
	for name, hash := range collected {
		refs = append(refs, Ref{Name: name, Hash: hash})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// walkRefDir recursively collects every leaf file under gitDir/dir, keyed
// by its slash path relative to gitDir. A missing directory is not an
// error.
func walkRefDir(gitDir, dir string, collected map[string]string) error {
	root := filepath.Join(gitDir, filepath.FromSlash(dir))
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(gitDir, path)
		if err != nil {
			return err
		}
		hash, err := readRefFile(path)
		if err != nil {
			return err
		}
		collected[filepath.ToSlash(rel)] = hash
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}
	return nil
}

// readRefFile reads a ref leaf file: exactly 40 hex characters, trailing
// newline tolerated.
func readRefFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	hash := strings.TrimRight(string(data), "\n")
	if len(hash) != 40 {
		return "", fmt.Errorf("ref %s: malformed hash %q", path, hash)
	}
	return hash, nil
}

// resolveHead reads the HEAD pointer file. A symbolic HEAD ("ref: <path>")
// reuses the already-collected hash for its target when present, and
// otherwise reads the target file directly; a dangling target is an error.
// A detached HEAD holds the hash itself.
func resolveHead(gitDir string, collected map[string]string) (string, error) {
	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	target, ok := strings.CutPrefix(content, "ref: ")
	if !ok {
		// Detached HEAD: the file holds a raw hash.
		if len(content) != 40 {
			return "", fmt.Errorf("HEAD: malformed content %q", content)
		}
		return content, nil
	}

	if hash, ok := collected[target]; ok {
		return hash, nil
	}
	hash, err := readRefFile(filepath.Join(gitDir, filepath.FromSlash(target)))
	if err != nil {
		return "", fmt.Errorf("resolve HEAD -> %s: %w", target, err)
	}
	return hash, nil
}

// FormatOptions controls hash rendering. Abbrev shortens hashes while
// keeping the name column; HashOnly drops the name column entirely and
// takes precedence when both are set. Any nonzero length is clamped to
// [4, 40], never rejected; zero means off.
type FormatOptions struct {
	Abbrev   int
	HashOnly int
}

// Format renders refs one per line, newline-joined with no trailing
// newline. The default line shape is "<hash> <name>".
func Format(refs []Ref, opts FormatOptions) string {
	lines := make([]string, 0, len(refs))
	for _, r := range refs {
		switch {
		case opts.HashOnly != 0:
			lines = append(lines, r.Hash[:clampAbbrev(opts.HashOnly)])
		case opts.Abbrev != 0:
			lines = append(lines, r.Hash[:clampAbbrev(opts.Abbrev)]+" "+r.Name)
		default:
			lines = append(lines, r.Hash+" "+r.Name)
		}
	}
	return strings.Join(lines, "\n")
}

// clampAbbrev clamps an abbreviation length to the closed interval
// [4, 40]. Out-of-range values are clamped, not rejected.
func clampAbbrev(n int) int {
	if n < 4 {
		return 4
	}
	if n > 40 {
		return 40
	}
	return n
}
