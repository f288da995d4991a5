package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/odvcencio/grit/pkg/index"
	"github.com/odvcencio/grit/pkg/object"
)

func (r *Repo) indexPath() string {
	return filepath.Join(r.GitDir, "index")
}

// ReadIndex loads the staging area. If the index file does not exist, an
// empty entry list is returned (no error). Entries are rebuilt from disk
// on every call; nothing is cached between calls.
func (r *Repo) ReadIndex() ([]index.Entry, error) {
	entries, err := index.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}
	return entries, nil
}

// WriteIndex saves the staging area, sorting entries by path first, which
// is what external index consumers conventionally expect.
func (r *Repo) WriteIndex(entries []index.Entry) error {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	if err := index.WriteFile(r.indexPath(), entries); err != nil {
		return fmt.Errorf("write staging: %w", err)
	}
	return nil
}

// Add stages the given file paths: each file's content is written to the
// object store as a blob, and an index entry carrying the file's stat
// metadata and content hash replaces any previous entry for the same
// path. The whole operation is a single read-modify-write cycle over the
// index file.
func (r *Repo) Add(paths []string) error {
	entries, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	byPath := make(map[string]int, len(entries))
	for i := range entries {
		byPath[entries[i].Path] = i
	}

	for _, p := range paths {
		entry, err := r.stageFile(p)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		if i, ok := byPath[entry.Path]; ok {
			entries[i] = entry
		} else {
			byPath[entry.Path] = len(entries)
			entries = append(entries, entry)
		}
	}

	if err := r.WriteIndex(entries); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// stageFile hashes one file into the store and builds its index entry.
func (r *Repo) stageFile(path string) (index.Entry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return index.Entry{}, fmt.Errorf("read %q: %w", path, err)
	}

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return index.Entry{}, fmt.Errorf("stat %q: %w", path, err)
	}

	h, err := r.Store.Write(object.TypeBlob, content)
	if err != nil {
		return index.Entry{}, fmt.Errorf("write blob %q: %w", path, err)
	}
	raw, err := h.Raw()
	if err != nil {
		return index.Entry{}, fmt.Errorf("blob hash %q: %w", path, err)
	}

	return index.Entry{
		CtimeSec:  uint32(st.Ctim.Sec),
		CtimeNano: uint32(st.Ctim.Nsec),
		MtimeSec:  uint32(st.Mtim.Sec),
		MtimeNano: uint32(st.Mtim.Nsec),
		Dev:       uint32(st.Dev),
		Ino:       uint32(st.Ino),
		Mode:      st.Mode,
		UID:       st.Uid,
		GID:       st.Gid,
		Size:      uint16(st.Size), // truncated by the on-disk format
		Hash:      raw,
		Stage:     index.StageUnmerged,
		Path:      filepath.ToSlash(filepath.Clean(path)),
	}, nil
}
