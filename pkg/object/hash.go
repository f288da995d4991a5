package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// HashObject computes the SHA-1 of the envelope "<type> <size>\0<content>",
// which is the object's identity in the store. Identical (type, content)
// pairs always hash to the same value.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", objType, len(data))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ParseHash validates a caller-supplied hex string and returns it as a Hash.
func ParseHash(s string) (Hash, error) {
	if len(s) != 40 {
		return "", fmt.Errorf("hash %q: want 40 hex characters, got %d", s, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("hash %q: %w", s, err)
	}
	return Hash(s), nil
}

// FromRaw converts a raw 20-byte digest to its hex Hash form.
func FromRaw(raw [20]byte) Hash {
	return Hash(hex.EncodeToString(raw[:]))
}

// Raw converts the hex Hash to its raw 20-byte form.
func (h Hash) Raw() ([20]byte, error) {
	var raw [20]byte
	if len(h) != 40 {
		return raw, fmt.Errorf("hash %q: want 40 hex characters, got %d", h, len(h))
	}
	if _, err := hex.Decode(raw[:], []byte(h)); err != nil {
		return raw, fmt.Errorf("hash %q: %w", h, err)
	}
	return raw, nil
}
