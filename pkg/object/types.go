package object

import "fmt"

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// ParseType converts a type token to an ObjectType. Only the four known
// tokens are accepted; anything else fails with ErrUnknownType.
func ParseType(token string) (ObjectType, error) {
	switch t := ObjectType(token); t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return t, nil
	}
	return "", fmt.Errorf("object type %q: %w", token, ErrUnknownType)
}

// TreeEntry is one entry in a tree object: an ASCII mode string, a name,
// and the raw 20-byte hash of the referenced object.
type TreeEntry struct {
	Mode string
	Name string
	Hash [20]byte
}

// Header is the parsed first line of a decompressed object,
// "<type> <size>\0". Type holds the literal token, which may be something
// other than the four known types when the object was read leniently.
type Header struct {
	Type string
	Size int64
}
