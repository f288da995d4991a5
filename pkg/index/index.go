// Package index encodes and decodes the binary staging-area file
// (version 2 of the "DIRC" format). The codec is state-free: both
// directions run over the caller's reader or writer in a single pass.
package index

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

const (
	signature = "DIRC"
	version   = 2

	// Size of the per-entry block before the path: nine 4-byte integers,
	// a 2-byte size, the 20-byte hash, 2 flag bytes, and 2 reserved bytes.
	fixedBlockLen = 9*4 + 2 + 20 + 2 + 2
)

// Flag word layout. The high bit is assume-valid, the two bits below it
// are the merge stage, and the low 12 bits hold the path length.
const (
	flagAssumeValid = 0x8000
	stageShift      = 12
	stageMask       = 0x3
	pathLenMask     = 0x0fff
)

var (
	ErrBadSignature       = errors.New("invalid index signature")
	ErrUnsupportedVersion = errors.New("unsupported index version")
	ErrBadStage           = errors.New("invalid merge stage")
	ErrPathTooLong        = errors.New("path length exceeds 12-bit field")
	ErrBadPath            = errors.New("path is not valid utf-8")
	ErrChecksum           = errors.New("index checksum mismatch")
)

// Stage tags an entry's role during an unresolved merge.
type Stage uint8

const (
	StageUnmerged Stage = iota
	StageBase
	StageOurs
	StageTheirs
)

func (s Stage) String() string {
	switch s {
	case StageUnmerged:
		return "unmerged"
	case StageBase:
		return "base"
	case StageOurs:
		return "ours"
	case StageTheirs:
		return "theirs"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// Entry records the staged state of a single file. Size is truncated to
// 16 bits, a precision loss versus 64-bit file sizes that the on-disk
// format imposes.
type Entry struct {
	CtimeSec  uint32
	CtimeNano uint32
	MtimeSec  uint32
	MtimeNano uint32
	Dev       uint32
	Ino       uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint16
	Hash      [20]byte

	AssumeValid bool
	Stage       Stage
	Path        string
}

// padLen returns the number of NUL bytes after a path of the given length.
// The fixed block is 62 bytes (6 mod 8), so this always yields 1-8 bytes
// and brings each entry to a multiple of 8.
func padLen(pathLen int) int {
	return 8 - (6+pathLen)%8
}

// EncodedLen returns the total on-disk length of one entry.
func (e *Entry) EncodedLen() int {
	return fixedBlockLen + len(e.Path) + padLen(len(e.Path))
}

// Decode reads an index stream: the 12-byte header, each entry in
// sequence, and the trailing checksum, which is verified against a SHA-1
// of all preceding bytes. Any short read of a fixed-size field is fatal;
// there is no partial-entry recovery.
func Decode(r io.Reader) ([]Entry, error) {
	digest := sha1.New()
	tr := io.TeeReader(r, digest)

	var header [12]byte
	if _, err := io.ReadFull(tr, header[:]); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	if !bytes.Equal(header[:4], []byte(signature)) {
		return nil, fmt.Errorf("read index header: %w", ErrBadSignature)
	}
	if v := binary.BigEndian.Uint32(header[4:8]); v != version {
		return nil, fmt.Errorf("read index header: %w: %d", ErrUnsupportedVersion, v)
	}
	entryCount := binary.BigEndian.Uint32(header[8:12])

	// The count comes from the file, so the slice grows as entries
	// actually decode rather than pre-allocating from an untrusted value.
	var entries []Entry
	for i := uint32(0); i < entryCount; i++ {
		entry, err := decodeEntry(tr)
		if err != nil {
			return nil, fmt.Errorf("read index entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	// The trailer is read outside the tee so it does not feed the digest.
	var checksum [20]byte
	if _, err := io.ReadFull(r, checksum[:]); err != nil {
		return nil, fmt.Errorf("read trailing checksum: %w", err)
	}
	if !bytes.Equal(checksum[:], digest.Sum(nil)) {
		return nil, fmt.Errorf("read trailing checksum: %w", ErrChecksum)
	}

	return entries, nil
}

func decodeEntry(r io.Reader) (Entry, error) {
	var block [fixedBlockLen]byte
	if _, err := io.ReadFull(r, block[:]); err != nil {
		return Entry{}, fmt.Errorf("read fixed block: %w", err)
	}

	e := Entry{
		CtimeSec:  binary.BigEndian.Uint32(block[0:4]),
		CtimeNano: binary.BigEndian.Uint32(block[4:8]),
		MtimeSec:  binary.BigEndian.Uint32(block[8:12]),
		MtimeNano: binary.BigEndian.Uint32(block[12:16]),
		Dev:       binary.BigEndian.Uint32(block[16:20]),
		Ino:       binary.BigEndian.Uint32(block[20:24]),
		Mode:      binary.BigEndian.Uint32(block[24:28]),
		UID:       binary.BigEndian.Uint32(block[28:32]),
		GID:       binary.BigEndian.Uint32(block[32:36]),
		Size:      binary.BigEndian.Uint16(block[36:38]),
	}
	copy(e.Hash[:], block[38:58])

	flags := binary.BigEndian.Uint16(block[58:60])
	e.AssumeValid = flags&flagAssumeValid != 0
	e.Stage = Stage(flags >> stageShift & stageMask)
	pathLen := int(flags & pathLenMask)
	// block[60:62] are the reserved extended-flag bytes: skipped, not
	// validated.

	path := make([]byte, pathLen)
	if _, err := io.ReadFull(r, path); err != nil {
		return Entry{}, fmt.Errorf("read %d path bytes: %w", pathLen, err)
	}
	if !utf8.Valid(path) {
		return Entry{}, fmt.Errorf("parse path: %w", ErrBadPath)
	}
	e.Path = string(path)

	pad := make([]byte, padLen(pathLen))
	if _, err := io.ReadFull(r, pad); err != nil {
		return Entry{}, fmt.Errorf("skip %d padding bytes: %w", len(pad), err)
	}

	return e, nil
}

// Encode writes the header, each entry in the order given, and a trailing
// SHA-1 over everything written before it. Padding is computed per entry.
// The caller's ordering is preserved; sorting, where wanted, is the
// caller's concern.
func Encode(w io.Writer, entries []Entry) error {
	digest := sha1.New()
	mw := io.MultiWriter(w, digest)

	var header [12]byte
	copy(header[:4], signature)
	binary.BigEndian.PutUint32(header[4:8], version)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(entries)))
	if _, err := mw.Write(header[:]); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}

	for i := range entries {
		if err := encodeEntry(mw, &entries[i]); err != nil {
			return fmt.Errorf("write index entry %d (%s): %w", i, entries[i].Path, err)
		}
	}

	if _, err := w.Write(digest.Sum(nil)); err != nil {
		return fmt.Errorf("write trailing checksum: %w", err)
	}
	return nil
}

func encodeEntry(w io.Writer, e *Entry) error {
	if e.Stage > StageTheirs {
		return fmt.Errorf("%w: %d", ErrBadStage, e.Stage)
	}
	if len(e.Path) > pathLenMask {
		return fmt.Errorf("%w: %d bytes", ErrPathTooLong, len(e.Path))
	}

	var block [fixedBlockLen]byte
	binary.BigEndian.PutUint32(block[0:4], e.CtimeSec)
	binary.BigEndian.PutUint32(block[4:8], e.CtimeNano)
	binary.BigEndian.PutUint32(block[8:12], e.MtimeSec)
	binary.BigEndian.PutUint32(block[12:16], e.MtimeNano)
	binary.BigEndian.PutUint32(block[16:20], e.Dev)
	binary.BigEndian.PutUint32(block[20:24], e.Ino)
	binary.BigEndian.PutUint32(block[24:28], e.Mode)
	binary.BigEndian.PutUint32(block[28:32], e.UID)
	binary.BigEndian.PutUint32(block[32:36], e.GID)
	binary.BigEndian.PutUint16(block[36:38], e.Size)
	copy(block[38:58], e.Hash[:])

	flags := uint16(len(e.Path)) & pathLenMask
	flags |= (uint16(e.Stage) & stageMask) << stageShift
	if e.AssumeValid {
		flags |= flagAssumeValid
	}
	binary.BigEndian.PutUint16(block[58:60], flags)
	// block[60:62] stay zero: reserved extended-flag bytes.

	if _, err := w.Write(block[:]); err != nil {
		return fmt.Errorf("write fixed block: %w", err)
	}
	if _, err := io.WriteString(w, e.Path); err != nil {
		return fmt.Errorf("write path: %w", err)
	}
	if _, err := w.Write(make([]byte, padLen(len(e.Path)))); err != nil {
		return fmt.Errorf("write padding: %w", err)
	}
	return nil
}

// ReadFile decodes the index file at path. A missing file surfaces as the
// wrapped fs.ErrNotExist; callers that treat absence as an empty index
// branch on that.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	entries, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	return entries, nil
}

// WriteFile encodes entries to the index file at path. The write is
// atomic via temp file + rename.
func WriteFile(path string, entries []Entry) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("write index: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, entries); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write index: close: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write index: rename: %w", err)
	}
	return nil
}
