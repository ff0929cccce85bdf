package storage

import (
	"context"
	"io"
)

// Provider is the narrow storage contract fax artifacts need: write a
// blob once, read it back, delete it once retention expires. Unlike a
// general-purpose object store client, it has no listing, copying, or
// presigned-URL surface — tokenized retrieval is handled by
// internal/crypto, not by the storage backend.
type Provider interface {
	// Put writes data to path, creating any parent directories/prefixes
	// implicitly. Overwrites an existing object at the same path.
	Put(ctx context.Context, path string, data io.Reader, size int64, contentType string) error

	// Open returns a reader for the object at path. The caller must
	// close it. Returns an error wrapping storage.ErrNotFound if the
	// object does not exist.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. Deleting a missing object is
	// not an error — the retention sweep may race a manual cleanup.
	Delete(ctx context.Context, path string) error
}

// ErrNotFound is returned (wrapped) by Open when no object exists at
// the given path.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "storage: object not found" }
