package index

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func sampleEntries() []Entry {
	return []Entry{
		{
			CtimeSec: 1700000000, CtimeNano: 123456789,
			MtimeSec: 1700000001, MtimeNano: 987654321,
			Dev: 2049, Ino: 131072, Mode: 0o100644, UID: 1000, GID: 1000,
			Size: 13,
			Hash: [20]byte{0xb4, 0x5e, 0xf6, 0xfe, 0xc8, 0x95, 0x18, 0xd3, 0x14, 0xf5},
			Path: "hello.txt",
		},
		{
			CtimeSec: 1700000100, CtimeNano: 1,
			MtimeSec: 1700000100, MtimeNano: 1,
			Dev: 2049, Ino: 131073, Mode: 0o100755, UID: 1000, GID: 1000,
			Size:        4096,
			Hash:        [20]byte{0xde, 0xad, 0xbe, 0xef},
			AssumeValid: true,
			Stage:       StageOurs,
			Path:        "scripts/run.sh",
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entries := sampleEntries()

	var buf bytes.Buffer
	if err := Encode(&buf, entries); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(entries) {
		t.Fatalf("entries: got %d, want %d", len(decoded), len(entries))
	}
	for i := range entries {
		if decoded[i] != entries[i] {
			t.Errorf("entry %d:\n got %+v\nwant %+v", i, decoded[i], entries[i])
		}
	}
}

func TestEncodedEntryAlignment(t *testing.T) {
	entries := sampleEntries()
	for _, e := range entries {
		if e.EncodedLen()%8 != 0 {
			t.Errorf("entry %q: encoded length %d not a multiple of 8", e.Path, e.EncodedLen())
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, entries); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// 12-byte header + entries + 20-byte checksum.
	body := buf.Len() - 12 - 20
	if body%8 != 0 {
		t.Errorf("entry region length %d not a multiple of 8", body)
	}
	want := 0
	for _, e := range entries {
		want += e.EncodedLen()
	}
	if body != want {
		t.Errorf("entry region: got %d bytes, want %d", body, want)
	}
}

func TestPadLenRange(t *testing.T) {
	for pathLen := 0; pathLen < 64; pathLen++ {
		pad := padLen(pathLen)
		if pad < 1 || pad > 8 {
			t.Fatalf("padLen(%d) = %d, want 1..8", pathLen, pad)
		}
		if (fixedBlockLen+pathLen+pad)%8 != 0 {
			t.Fatalf("padLen(%d) = %d leaves a misaligned entry", pathLen, pad)
		}
	}
}

func TestDecodeBadSignature(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	copy(data[:4], "JUNK")

	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Decode: got %v, want ErrBadSignature", err)
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	data[7] = 3 // version big-endian low byte

	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Decode: got %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleEntries()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	data[len(data)-1] ^= 0xff

	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrChecksum) {
		t.Errorf("Decode: got %v, want ErrChecksum", err)
	}
}

func TestDecodeShortRead(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleEntries()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	truncated := buf.Bytes()[:40]

	if _, err := Decode(bytes.NewReader(truncated)); err == nil {
		t.Error("Decode accepted a truncated stream")
	}
}

func TestDecodeOverstatedEntryCount(t *testing.T) {
	// A header claiming billions of entries over an empty body must fail
	// on the first entry read, not allocate for the claimed count.
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()[:12]
	data[8], data[9], data[10], data[11] = 0xff, 0xff, 0xff, 0xff

	if _, err := Decode(bytes.NewReader(data)); err == nil {
		t.Error("Decode accepted an overstated entry count")
	}
}

func TestEncodeRejectsBadStage(t *testing.T) {
	entries := sampleEntries()
	entries[0].Stage = Stage(7)

	var buf bytes.Buffer
	if err := Encode(&buf, entries); !errors.Is(err, ErrBadStage) {
		t.Errorf("Encode: got %v, want ErrBadStage", err)
	}
}

func TestEncodeRejectsLongPath(t *testing.T) {
	entries := sampleEntries()
	entries[0].Path = string(bytes.Repeat([]byte{'a'}, 4096))

	var buf bytes.Buffer
	if err := Encode(&buf, entries); !errors.Is(err, ErrPathTooLong) {
		t.Errorf("Encode: got %v, want ErrPathTooLong", err)
	}
}

func TestStageRoundTrip(t *testing.T) {
	for _, stage := range []Stage{StageUnmerged, StageBase, StageOurs, StageTheirs} {
		entries := []Entry{{Stage: stage, Path: "f"}}
		var buf bytes.Buffer
		if err := Encode(&buf, entries); err != nil {
			t.Fatalf("Encode stage %v: %v", stage, err)
		}
		decoded, err := Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("Decode stage %v: %v", stage, err)
		}
		if decoded[0].Stage != stage {
			t.Errorf("stage: got %v, want %v", decoded[0].Stage, stage)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index")
	entries := sampleEntries()

	if err := WriteFile(path, entries); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	decoded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(decoded) != len(entries) {
		t.Fatalf("entries: got %d, want %d", len(decoded), len(entries))
	}
	for i := range entries {
		if decoded[i] != entries[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, decoded[i], entries[i])
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "index"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile: got %v, want fs.ErrNotExist", err)
	}
}
