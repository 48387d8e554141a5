package files

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpenko/codepad/internal/common"
	"github.com/mkarpenko/codepad/internal/logging"
	"github.com/mkarpenko/codepad/internal/server/storage"
)

// -------- test fakes --------

// flakyStore wraps a MemStore and injects failures per operation.
type flakyStore struct {
	*storage.MemStore
	headErrFor map[string]error
	listErr    error
	putErr     error
	getErr     error
	policyErr  error
}

func (f *flakyStore) Head(ctx context.Context, key string) (storage.ObjectInfo, error) {
	if err, ok := f.headErrFor[key]; ok {
		return storage.ObjectInfo{}, err
	}
	return f.MemStore.Head(ctx, key)
}

func (f *flakyStore) List(ctx context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemStore.List(ctx, prefix)
}

func (f *flakyStore) Put(ctx context.Context, key string, body []byte, metadata map[string]string) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemStore.Put(ctx, key, body, metadata)
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, storage.ObjectInfo, error) {
	if f.getErr != nil {
		return nil, storage.ObjectInfo{}, f.getErr
	}
	return f.MemStore.Get(ctx, key)
}

func (f *flakyStore) EnsurePolicy(ctx context.Context, rule storage.PolicyRule) error {
	if f.policyErr != nil {
		return f.policyErr
	}
	return f.MemStore.EnsurePolicy(ctx, rule)
}

// -------- helpers --------

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func newTestService(t *testing.T) (*Service, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	return NewService(store, testLogger()), store
}

// -------- tests --------

func TestService_SaveGet_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	before := time.Now()

	saved, err := svc.Save(ctx, "u1", SaveRequest{ID: "f1", Name: "a.js", Content: "let x=1;", Language: "javascript"})
	require.NoError(t, err)
	assert.Equal(t, "f1", saved.ID)
	assert.False(t, saved.LastModified.Before(before))

	got, err := svc.Get(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", got.ID)
	assert.Equal(t, "a.js", got.Name)
	assert.Equal(t, "let x=1;", got.Content)
	assert.Equal(t, "javascript", got.Language)
	assert.False(t, got.LastModified.Before(before))
}

func TestService_Save_OverwritesNotAppends(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", SaveRequest{ID: "f1", Name: "a.js", Content: "let x=1;", Language: "javascript"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u1", SaveRequest{ID: "f1", Name: "a.js", Content: "let x=2;", Language: "javascript"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "let x=2;", got.Content)
}

func TestService_Save_GeneratesIDWhenAbsent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, "u1", SaveRequest{Name: "a.js", Content: "x", Language: "javascript"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := svc.Save(ctx, "u1", SaveRequest{Name: "b.js", Content: "y", Language: "javascript"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := svc.Get(ctx, "u1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Content)
}

func TestService_Save_DefaultsLanguage(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, "u1", SaveRequest{ID: "f1", Name: "a", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "javascript", saved.Language)
}

func TestService_Upload_SameSemanticsAsSave(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	up, err := svc.Upload(ctx, "u1", SaveRequest{ID: "f1", Name: "dropped.py", Content: "print(1)", Language: "python"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, up.Content, got.Content)
	assert.Equal(t, "dropped.py", got.Name)
	assert.Equal(t, "python", got.Language)
}

func TestService_Get_Missing_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestService_Get_CrossUser_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", SaveRequest{ID: "f1", Name: "a.js", Content: "secret", Language: "javascript"})
	require.NoError(t, err)

	// same fileID, different user: must not resolve
	_, err = svc.Get(ctx, "u2", "f1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestService_Get_InvalidUTF8_EmptyContent(t *testing.T) {
	t.Parallel()

	store := storage.NewMemStore()
	svc := NewService(store, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ObjectKey("u1", "f1"), []byte{0xff, 0xfe, 0xfd}, nil))

	_, err := svc.Get(ctx, "u1", "f1")
	assert.ErrorIs(t, err, common.ErrorEmptyContent)
}

func TestService_Get_AdapterFailure_Internal(t *testing.T) {
	t.Parallel()

	store := &flakyStore{MemStore: storage.NewMemStore(), getErr: errors.New("connection reset")}
	svc := NewService(store, testLogger())

	_, err := svc.Get(context.Background(), "u1", "f1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestService_List_EmptyNamespace(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	infos, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestService_List_ReturnsOwnFilesOnly(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", SaveRequest{ID: "f1", Name: "a.js", Content: "1", Language: "javascript"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u1", SaveRequest{ID: "f2", Name: "b.py", Content: "2", Language: "python"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u2", SaveRequest{ID: "f3", Name: "c.md", Content: "3", Language: "markdown"})
	require.NoError(t, err)

	infos, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[string]FileInfo{}
	for _, fi := range infos {
		byID[fi.ID] = fi
	}
	assert.Equal(t, "a.js", byID["f1"].Name)
	assert.Equal(t, "javascript", byID["f1"].Language)
	assert.Equal(t, "b.py", byID["f2"].Name)
	assert.Equal(t, "python", byID["f2"].Language)
	assert.NotContains(t, byID, "f3")
}

func TestService_List_SkipsEntriesWithFailingMetadata(t *testing.T) {
	t.Parallel()

	store := &flakyStore{
		MemStore:   storage.NewMemStore(),
		headErrFor: map[string]error{ObjectKey("u1", "f2"): errors.New("timeout")},
	}
	svc := NewService(store, testLogger())
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", SaveRequest{ID: "f1", Name: "a.js", Content: "1", Language: "javascript"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u1", SaveRequest{ID: "f2", Name: "b.js", Content: "2", Language: "javascript"})
	require.NoError(t, err)

	infos, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "f1", infos[0].ID)
}

func TestService_List_AdapterFailure_Internal(t *testing.T) {
	t.Parallel()

	store := &flakyStore{MemStore: storage.NewMemStore(), listErr: errors.New("boom")}
	svc := NewService(store, testLogger())

	_, err := svc.List(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", SaveRequest{ID: "f1", Name: "a.js", Content: "1", Language: "javascript"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", "f1"))

	_, err = svc.Get(ctx, "u1", "f1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "u1", "f1"), common.ErrorNotFound)
}

func TestService_Bootstrap_Idempotent(t *testing.T) {
	t.Parallel()

	store := storage.NewMemStore()
	svc := NewService(store, testLogger())
	ctx := context.Background()

	created, err := svc.Bootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, store.Policies(), 4)

	created, err = svc.Bootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestService_Bootstrap_PolicyFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	store := &flakyStore{MemStore: storage.NewMemStore(), policyErr: errors.New("not supported")}
	svc := NewService(store, testLogger())

	created, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
}

func TestService_Save_AdapterFailure_Internal(t *testing.T) {
	t.Parallel()

	store := &flakyStore{MemStore: storage.NewMemStore(), putErr: errors.New("disk full")}
	svc := NewService(store, testLogger())

	_, err := svc.Save(context.Background(), "u1", SaveRequest{ID: "f1", Name: "a", Content: "x", Language: "javascript"})
	assert.ErrorIs(t, err, common.ErrorInternal)
}
