// Package storage provides the object store adapter: thin put/get/head/list
// primitives against a flat blob backend, plus idempotent bucket and access
// policy bootstrap. Keys are opaque slash-separated paths; ownership scoping
// happens one layer up, in the files service.
package storage

import (
	"context"
	"time"
)

// DefaultSizeLimit caps individual objects at 10MB, matching the limit
// configured on the bucket.
const DefaultSizeLimit = 10 << 20

// ObjectInfo carries the side-channel attributes of a stored object.
// Metadata holds user-defined key-value pairs written alongside the body.
// LastModified is zero when the backend did not report a timestamp.
type ObjectInfo struct {
	Metadata     map[string]string
	LastModified time.Time
	Size         int64
}

// PolicyRule describes one per-operation access rule installed at bootstrap.
// Definition is the object-key predicate the rule applies to; the fixed
// deployment rule scopes access to keys whose first path segment equals the
// caller's identity.
type PolicyRule struct {
	Name       string
	Definition string
	Operation  string // SELECT, INSERT, UPDATE or DELETE
}

// ObjectStore is the adapter boundary to the blob backend.
//
// All read operations report a missing object as common.ErrorNotFound and do
// not distinguish "truly absent" from "present but inaccessible". Put has
// upsert semantics and always replaces the metadata map as a whole; there is
// no metadata-only update path.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, metadata map[string]string) error
	Get(ctx context.Context, key string) ([]byte, ObjectInfo, error)
	Head(ctx context.Context, key string) (ObjectInfo, error)
	// List enumerates the direct leaf names under prefix, without recursing
	// and without metadata. Order is backend-defined.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error

	// EnsureBucket creates the backing bucket if absent. An already existing
	// bucket is a success with created=false, never an error.
	EnsureBucket(ctx context.Context, public bool, sizeLimit int64) (created bool, err error)
	// EnsurePolicy installs one access rule, replacing a previous rule with
	// the same name.
	EnsurePolicy(ctx context.Context, rule PolicyRule) error
}
