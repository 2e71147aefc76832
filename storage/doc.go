// Package storage defines the object store abstraction for uploaded source
// files. Stored objects keep the original bytes so documents can be
// re-extracted and re-indexed without a fresh upload.
package storage
