package object

import (
	"bytes"
	"fmt"
	"strings"
)

// DecodeTree parses the decompressed content of a tree object. The format
// is a flat concatenation of "<mode> <name>\0<20-byte-hash>" records with
// no count prefix and no separator; end of stream is the only terminator.
// Entry order is preserved as stored. The returned count is the number of
// bytes consumed, which for a well-formed tree equals len(data); callers
// validate it against the enclosing object's declared size. A stream that
// ends mid-entry is an error, never treated as end-of-tree.
func DecodeTree(data []byte) ([]TreeEntry, int, error) {
	var entries []TreeEntry
	pos := 0

	for pos < len(data) {
		sp := bytes.IndexByte(data[pos:], ' ')
		if sp < 0 {
			return nil, pos, fmt.Errorf("tree entry %d: %w: truncated mode", len(entries), ErrBadHeader)
		}
		mode := string(data[pos : pos+sp])
		pos += sp + 1

		nul := bytes.IndexByte(data[pos:], 0)
		if nul < 0 {
			return nil, pos, fmt.Errorf("tree entry %d: %w: truncated name", len(entries), ErrBadHeader)
		}
		name := string(data[pos : pos+nul])
		pos += nul + 1

		if len(data)-pos < 20 {
			return nil, pos, fmt.Errorf("tree entry %d: %w: truncated hash", len(entries), ErrBadHeader)
		}
		var raw [20]byte
		copy(raw[:], data[pos:pos+20])
		pos += 20

		entries = append(entries, TreeEntry{Mode: mode, Name: name, Hash: raw})
	}

	return entries, pos, nil
}

// EncodeTree serializes tree entries back to the on-disk record format,
// in the order given.
func EncodeTree(entries []TreeEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.Hash[:])
	}
	return buf.Bytes()
}

// PrettyTree renders decoded tree entries one per line as
// "<mode> <type> <hex-hash>\t<name>", resolving each entry's type with a
// header-only read against the store. Lines are joined with a newline and
// keep the stored order. An entry whose hash does not resolve to a valid
// object propagates the store's error.
func (s *Store) PrettyTree(entries []TreeEntry) (string, error) {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		h := FromRaw(e.Hash)
		hdr, err := s.ReadHeader(h, false)
		if err != nil {
			return "", fmt.Errorf("tree entry %q: %w", e.Name, err)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s\t%s", e.Mode, hdr.Type, h, e.Name))
	}
	return strings.Join(lines, "\n"), nil
}
