package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zlib"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: <dir>/ab/cdef0123... Objects are zlib-compressed
// "<type> <size>\0<content>" envelopes.
type Store struct {
	dir   string
	level int
}

// NewStore creates a Store rooted at the given objects directory. The
// fan-out subdirectories are created lazily on first write.
func NewStore(objectDir string) *Store {
	return &Store{dir: objectDir, level: zlib.DefaultCompression}
}

// SetCompression sets the zlib compression level used for writes.
// Levels outside the range zlib accepts surface as write errors.
func (s *Store) SetCompression(level int) {
	s.level = level
}

// Path returns the filesystem path for a given hash without checking
// that the object exists. The hash must be 40 hex characters.
func (s *Store) Path(h Hash) string {
	return filepath.Join(s.dir, string(h[:2]), string(h[2:]))
}

// Locate returns the filesystem path for a given hash, failing with
// ErrNotFound if no object file is present there.
func (s *Store) Locate(h Hash) (string, error) {
	if len(h) != 40 {
		return "", fmt.Errorf("object %q: %w", h, ErrNotFound)
	}
	p := s.Path(h)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("object %s: %w", h, ErrNotFound)
		}
		return "", fmt.Errorf("object %s: %w", h, err)
	}
	return p, nil
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	_, err := s.Locate(h)
	return err == nil
}

// Write stores an object and returns its content hash. The envelope is
// compressed with zlib before hitting disk. Writes are idempotent and
// atomic: data goes to a temp file which is renamed into place, so a
// failed write never leaves a partial object at the final path.
func (s *Store) Write(objType ObjectType, content []byte) (Hash, error) {
	h := HashObject(objType, content)

	// Fast path: already exists. Rewriting would produce identical bytes.
	if s.Has(h) {
		return h, nil
	}

	dir := filepath.Join(s.dir, string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := s.compressTo(tmp, objType, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.Path(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

func (s *Store) compressTo(w io.Writer, objType ObjectType, content []byte) error {
	zw, err := zlib.NewWriterLevel(w, s.level)
	if err != nil {
		return fmt.Errorf("zlib level %d: %w", s.level, err)
	}
	if _, err := fmt.Fprintf(zw, "%s %d\x00", objType, len(content)); err != nil {
		return fmt.Errorf("compress header: %w", err)
	}
	if _, err := zw.Write(content); err != nil {
		return fmt.Errorf("compress content: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zlib: %w", err)
	}
	return nil
}

// ReadHeader decompresses an object just far enough to parse its
// "<type> <size>\0" header, leaving the content untouched. This keeps
// type and size queries cheap for large blobs. When allowUnknown is
// false, a type token outside the four known ones fails with
// ErrUnknownType; otherwise the literal token is returned unmodified.
func (s *Store) ReadHeader(h Hash, allowUnknown bool) (Header, error) {
	zr, closeAll, err := s.open(h)
	if err != nil {
		return Header{}, err
	}
	defer closeAll()

	hdr, err := readHeader(zr)
	if err != nil {
		return Header{}, fmt.Errorf("object %s: %w", h, err)
	}
	if !allowUnknown {
		if _, err := ParseType(hdr.Type); err != nil {
			return Header{}, fmt.Errorf("object %s: %w", h, err)
		}
	}
	return hdr, nil
}

// ReadContent decompresses an object fully, returning its header and
// content. The content length must equal the size declared in the header;
// a mismatch fails with ErrSizeMismatch.
func (s *Store) ReadContent(h Hash) (Header, []byte, error) {
	zr, closeAll, err := s.open(h)
	if err != nil {
		return Header{}, nil, err
	}
	defer closeAll()

	hdr, err := readHeader(zr)
	if err != nil {
		return Header{}, nil, fmt.Errorf("object %s: %w", h, err)
	}
	if _, err := ParseType(hdr.Type); err != nil {
		return Header{}, nil, fmt.Errorf("object %s: %w", h, err)
	}

	content, err := io.ReadAll(zr)
	if err != nil {
		return Header{}, nil, fmt.Errorf("object %s: read content: %w", h, err)
	}
	if int64(len(content)) != hdr.Size {
		return Header{}, nil, fmt.Errorf(
			"object %s: %w (header=%d, actual=%d)", h, ErrSizeMismatch, hdr.Size, len(content))
	}

	return hdr, content, nil
}

// open opens the object file and layers an incremental zlib reader on
// top. The returned closer releases both.
func (s *Store) open(h Hash) (*bufio.Reader, func(), error) {
	p, err := s.Locate(h)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, nil, fmt.Errorf("object %s: %w", h, err)
	}
	zr, err := zlib.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("object %s: zlib: %w", h, err)
	}
	closeAll := func() {
		zr.Close()
		f.Close()
	}
	return bufio.NewReader(zr), closeAll, nil
}

// readHeader consumes bytes up to and including the first NUL and parses
// them into a Header.
func readHeader(r *bufio.Reader) (Header, error) {
	line, err := r.ReadBytes(0)
	if err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	return parseHeader(line)
}

// parseHeader splits "<type> <size>\0" into its parts. The trailing NUL
// must be present.
func parseHeader(line []byte) (Header, error) {
	if len(line) == 0 || line[len(line)-1] != 0 {
		return Header{}, fmt.Errorf("%w: missing NUL terminator", ErrBadHeader)
	}
	typ, sizeText, ok := bytes.Cut(line[:len(line)-1], []byte{' '})
	if !ok {
		return Header{}, fmt.Errorf("%w: %q", ErrBadHeader, line)
	}
	size, err := strconv.ParseInt(string(sizeText), 10, 64)
	if err != nil || size < 0 {
		return Header{}, fmt.Errorf("%w: size %q is not a number", ErrBadHeader, sizeText)
	}
	return Header{Type: string(typ), Size: size}, nil
}
