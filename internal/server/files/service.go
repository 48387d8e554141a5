package files

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mkarpenko/codepad/internal/common"
	"github.com/mkarpenko/codepad/internal/logging"
	"github.com/mkarpenko/codepad/internal/server/storage"
)

// ownerPathPattern scopes an access rule to keys whose first path segment is
// the caller's identity. It matches the key shape produced by ObjectKey.
const ownerPathPattern = "users/${aws:userid}/*"

// bootstrapPolicies are the four fixed per-operation rules installed when
// the storage area is created.
var bootstrapPolicies = []storage.PolicyRule{
	{Name: "User files access", Definition: ownerPathPattern, Operation: "SELECT"},
	{Name: "User files insert", Definition: ownerPathPattern, Operation: "INSERT"},
	{Name: "User files update", Definition: ownerPathPattern, Operation: "UPDATE"},
	{Name: "User files delete", Definition: ownerPathPattern, Operation: "DELETE"},
}

// Service exposes the namespace operations. Every method takes the resolved
// caller identity and never accepts or returns a cross-user path; the
// transport layer is responsible for authentication, this layer only scopes.
type Service struct {
	store  storage.ObjectStore
	logger logging.Logger
}

func NewService(store storage.ObjectStore, logger logging.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With("module", "files"),
	}
}

// List enumerates the caller's files with their logical attributes. A user
// with zero files gets an empty slice, not an error.
//
// A metadata fetch that fails for one entry is logged and the entry is
// skipped; the remaining entries are still returned. (The behavior used to
// be all-or-nothing: one failing sub-fetch aborted the whole listing. That
// was a robustness gap, not a contract.)
func (s *Service) List(ctx context.Context, userID string) ([]FileInfo, error) {
	prefix := UserPrefix(userID)

	names, err := s.store.List(ctx, prefix)
	if err != nil {
		s.logger.Error(ctx, "listing failed", "prefix", prefix, "error", err)
		return nil, common.ErrorInternal
	}

	infos := make([]FileInfo, 0, len(names))
	for _, fileID := range names {
		obj, err := s.store.Head(ctx, ObjectKey(userID, fileID))
		if err != nil {
			s.logger.Warn(ctx, "skipping entry with unreadable metadata", "file_id", fileID, "error", err)
			continue
		}
		name, language, lastModified := reconcileMetadata(fileID, obj, time.Now())
		infos = append(infos, FileInfo{
			ID:           fileID,
			Name:         name,
			Language:     language,
			LastModified: lastModified,
		})
	}

	return infos, nil
}

// Get fetches one file. An absent or inaccessible object yields
// common.ErrorNotFound; a body that is not readable as text yields
// common.ErrorEmptyContent.
func (s *Service) Get(ctx context.Context, userID, fileID string) (*File, error) {
	body, obj, err := s.store.Get(ctx, ObjectKey(userID, fileID))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "get failed", "file_id", fileID, "error", err)
		return nil, common.ErrorInternal
	}

	if !utf8.Valid(body) {
		return nil, common.ErrorEmptyContent
	}

	name, language, lastModified := reconcileMetadata(fileID, obj, time.Now())
	return &File{
		ID:           fileID,
		Name:         name,
		Content:      string(body),
		Language:     language,
		LastModified: lastModified,
	}, nil
}

// Save upserts a file: content and metadata are written atomically by a
// single put, fully replacing any previous version. There is no concurrency
// check; concurrent writers race and the last put wins.
func (s *Service) Save(ctx context.Context, userID string, req SaveRequest) (*File, error) {
	return s.put(ctx, userID, req, "editor")
}

// Upload is Save triggered from the drag-and-drop/file-picker affordance.
// The semantics are identical; the source tag only shows up in logs.
func (s *Service) Upload(ctx context.Context, userID string, req SaveRequest) (*File, error) {
	return s.put(ctx, userID, req, "upload")
}

func (s *Service) put(ctx context.Context, userID string, req SaveRequest, source string) (*File, error) {
	fileID := req.ID
	if fileID == "" {
		fileID = uuid.New().String()
	}

	language := req.Language
	if language == "" {
		language = DefaultLanguage
	}

	err := s.store.Put(ctx, ObjectKey(userID, fileID), []byte(req.Content), encodeMetadata(req.Name, language))
	if err != nil {
		s.logger.Error(ctx, "save failed", "file_id", fileID, "source", source, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Debug(ctx, "file saved", "file_id", fileID, "source", source, "bytes", len(req.Content))

	return &File{
		ID:           fileID,
		Name:         req.Name,
		Content:      req.Content,
		Language:     language,
		LastModified: time.Now(),
	}, nil
}

// Delete removes a file from storage. The UI's "close file" does not call
// this; it exists so that closed files do not pile up forever.
func (s *Service) Delete(ctx context.Context, userID, fileID string) error {
	if err := s.store.Delete(ctx, ObjectKey(userID, fileID)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "delete failed", "file_id", fileID, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// Bootstrap creates the storage area: the bucket and the four per-operation
// access rules. It is idempotent and safe to call repeatedly. A policy rule
// that fails to install is logged and skipped so that one broken rule does
// not block the container or the other rules.
func (s *Service) Bootstrap(ctx context.Context) (created bool, err error) {
	created, err = s.store.EnsureBucket(ctx, false, storage.DefaultSizeLimit)
	if err != nil {
		s.logger.Error(ctx, "bucket creation failed", "error", err)
		return false, common.ErrorInternal
	}

	for _, rule := range bootstrapPolicies {
		if err := s.store.EnsurePolicy(ctx, rule); err != nil {
			s.logger.Warn(ctx, "policy creation failed", "policy", rule.Name, "error", err)
		}
	}

	return created, nil
}
