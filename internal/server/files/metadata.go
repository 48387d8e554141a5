package files

import (
	"time"

	"github.com/mkarpenko/codepad/internal/server/storage"
)

const (
	metaKeyName     = "name"
	metaKeyLanguage = "language"

	// DefaultLanguage is assumed for files stored without a language tag.
	DefaultLanguage = "javascript"
)

// encodeMetadata serializes the logical attributes into the blob's
// side-channel metadata map. The blob body carries only the content.
func encodeMetadata(name, language string) map[string]string {
	return map[string]string{
		metaKeyName:     name,
		metaKeyLanguage: language,
	}
}

// reconcileMetadata maps whatever the store returned back to logical
// attributes. It is total: absent metadata or absent fields degrade to
// defaults (placeholder name, javascript, read-time now) and never produce
// an error. A read must not fail solely because metadata is missing.
func reconcileMetadata(fileID string, info storage.ObjectInfo, now time.Time) (name, language string, lastModified time.Time) {
	name = "File " + fileID
	language = DefaultLanguage
	lastModified = now

	if v, ok := info.Metadata[metaKeyName]; ok && v != "" {
		name = v
	}
	if v, ok := info.Metadata[metaKeyLanguage]; ok && v != "" {
		language = v
	}
	if !info.LastModified.IsZero() {
		lastModified = info.LastModified
	}
	return name, language, lastModified
}
