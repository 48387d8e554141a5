// Package files implements the per-user virtual file namespace on top of the
// object store: key derivation, metadata propagation and the list/get/save/
// upload/delete operations consumed by the editor UI.
package files

import "time"

// File is the logical entity reconstructed on each read. It is never
// persisted as a record of its own: the content lives in the blob body and
// name/language in the blob's side-channel metadata.
type File struct {
	ID           string
	Name         string
	Content      string
	Language     string
	LastModified time.Time
}

// FileInfo is the listing projection of a File, without the content.
type FileInfo struct {
	ID           string
	Name         string
	Language     string
	LastModified time.Time
}

// SaveRequest carries the client-supplied fields of a save or upload. An
// empty ID requests a freshly generated identifier.
type SaveRequest struct {
	ID       string
	Name     string
	Content  string
	Language string
}
