package storage

import (
	"context"
	"time"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// Container groups objects, one container per deployment by default.
	Container string

	// Name is the object name within its container, usually the uploaded
	// file name.
	Name string

	// Size is the object payload size in bytes.
	Size int64

	// ContentType is the MIME type guessed from the object name.
	ContentType string

	// AccessLabels are the access-control labels the object was uploaded
	// with. They survive re-extraction so rebuilt index records keep the
	// same visibility as the originals.
	AccessLabels []string

	// UploadedAt records when the object was last written.
	UploadedAt time.Time
}

// URL returns the canonical docdex:// URL for the object.
func (i ObjectInfo) URL() string {
	return ObjectURL(i.Container, i.Name)
}

// ObjectURL builds the canonical URL for an object.
func ObjectURL(container, name string) string {
	return "docdex://" + container + "/" + name
}

// ObjectStore persists raw source files so they can be re-extracted and
// re-indexed later. Writing an existing name overwrites the object.
// Implementations must be thread-safe and support concurrent access.
type ObjectStore interface {
	// PutObject stores data under container/name and returns the object URL.
	// Access labels, when given, are persisted in the object's metadata.
	PutObject(ctx context.Context, container, name string, data []byte, accessLabels ...string) (string, error)

	// GetObject retrieves the payload and metadata for container/name.
	// Returns ErrObjectNotFound if the object doesn't exist.
	GetObject(ctx context.Context, container, name string) ([]byte, ObjectInfo, error)

	// ListObjects returns metadata for every object in the container,
	// ordered by name.
	ListObjects(ctx context.Context, container string) ([]ObjectInfo, error)

	// DeleteObject removes container/name.
	// Returns ErrObjectNotFound if the object doesn't exist.
	DeleteObject(ctx context.Context, container, name string) error

	// Close closes the storage backend and releases resources.
	Close() error
}
