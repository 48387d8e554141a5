package storage

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/mkarpenko/codepad/internal/common"
)

type memObject struct {
	body         []byte
	metadata     map[string]string
	lastModified time.Time
}

// MemStore is an in-process ObjectStore used by tests and local development.
// It mirrors the S3 adapter's contract: upsert puts, conflated not-found,
// non-recursive listing, idempotent bucket creation.
type MemStore struct {
	mu        sync.RWMutex
	objects   map[string]memObject
	policies  map[string]PolicyRule
	created   bool
	sizeLimit int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects:   make(map[string]memObject),
		policies:  make(map[string]PolicyRule),
		sizeLimit: DefaultSizeLimit,
	}
}

func (s *MemStore) Put(ctx context.Context, key string, body []byte, metadata map[string]string) error {
	if int64(len(body)) > s.sizeLimit {
		return common.ErrorInternal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = memObject{
		body:         append([]byte(nil), body...),
		metadata:     maps.Clone(metadata),
		lastModified: time.Now(),
	}
	return nil
}

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ObjectInfo{}, common.ErrorNotFound
	}
	return append([]byte(nil), obj.body...), s.infoLocked(obj), nil
}

func (s *MemStore) Head(ctx context.Context, key string) (ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return ObjectInfo{}, common.ErrorNotFound
	}
	return s.infoLocked(obj), nil
}

func (s *MemStore) infoLocked(obj memObject) ObjectInfo {
	return ObjectInfo{
		Metadata:     maps.Clone(obj.metadata),
		LastModified: obj.lastModified,
		Size:         int64(len(obj.body)),
	}
}

func (s *MemStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for key := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		leaf := strings.TrimPrefix(key, prefix)
		if leaf == "" || strings.Contains(leaf, "/") {
			continue
		}
		names = append(names, leaf)
	}
	return names, nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return common.ErrorNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemStore) EnsureBucket(ctx context.Context, public bool, sizeLimit int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sizeLimit > 0 {
		s.sizeLimit = sizeLimit
	}
	if s.created {
		return false, nil
	}
	s.created = true
	return true, nil
}

func (s *MemStore) EnsurePolicy(ctx context.Context, rule PolicyRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.policies[rule.Name] = rule
	return nil
}

// Policies returns the installed access rules; used by bootstrap tests.
func (s *MemStore) Policies() []PolicyRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]PolicyRule, 0, len(s.policies))
	for _, r := range s.policies {
		rules = append(rules, r)
	}
	return rules
}
