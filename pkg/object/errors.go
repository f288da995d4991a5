package object

import "errors"

var (
	// ErrNotFound indicates the requested object does not exist in the store.
	ErrNotFound = errors.New("object not found")

	// ErrBadHeader indicates the decompressed object does not start with a
	// well-formed "<type> <size>\0" header.
	ErrBadHeader = errors.New("invalid object header")

	// ErrUnknownType indicates a type token outside blob/tree/commit/tag was
	// encountered while strict typing was requested.
	ErrUnknownType = errors.New("unknown object type")

	// ErrSizeMismatch indicates the size declared in the header does not
	// match the number of content bytes actually present.
	ErrSizeMismatch = errors.New("object size does not match header")
)
