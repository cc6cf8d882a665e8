package auth

import (
	"errors"
	"sync"
	"testing"

	"ERPAdmin/internal/cli/model"
	"ERPAdmin/internal/cli/repo"
	fsrepo "ERPAdmin/internal/cli/repo/fs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStorage — простое in-memory хранилище для тестов.
type memStorage struct {
	mu    sync.Mutex
	data  map[string]string
	reads int
}

func newMemStorage() *memStorage { return &memStorage{data: map[string]string{}} }

func (m *memStorage) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	v, ok := m.data[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return v, nil
}

func (m *memStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// mockStorage — мок для сценариев с ошибками хранилища.
type mockStorage struct{ mock.Mock }

func (m *mockStorage) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}
func (m *mockStorage) Set(key, value string) error { return m.Called(key, value).Error(0) }
func (m *mockStorage) Delete(keys ...string) error {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return m.Called(args...).Error(0)
}

var _ repo.SessionStorage = (*memStorage)(nil)
var _ repo.SessionStorage = (*mockStorage)(nil)

func TestTokenStore_SetSession_VisibleImmediatelyAndPersisted(t *testing.T) {
	st := newMemStorage()
	ts := NewTokenStore(st, nil)

	require.NoError(t, ts.SetSession("a1", "r1"))
	assert.Equal(t, Session{AccessToken: "a1", RefreshToken: "r1"}, ts.Session())
	assert.Equal(t, "a1", st.data[AccessTokenKey])
	assert.Equal(t, "r1", st.data[RefreshTokenKey])

	require.NoError(t, ts.SetSession("a2", "r2"))
	assert.Equal(t, Session{AccessToken: "a2", RefreshToken: "r2"}, ts.Session())
}

func TestTokenStore_SetSession_RejectsEmpty(t *testing.T) {
	st := newMemStorage()
	ts := NewTokenStore(st, nil)
	require.NoError(t, ts.SetSession("a1", "r1"))

	assert.ErrorIs(t, ts.SetSession("", "r"), ErrEmptyToken)
	assert.ErrorIs(t, ts.SetSession("a", ""), ErrEmptyToken)
	assert.Equal(t, Session{AccessToken: "a1", RefreshToken: "r1"}, ts.Session())
}

func TestTokenStore_Session_LazyLoadOnce(t *testing.T) {
	st := newMemStorage()
	st.data[AccessTokenKey] = "stored-a"
	st.data[RefreshTokenKey] = "stored-r"
	ts := NewTokenStore(st, nil)

	assert.Equal(t, Session{AccessToken: "stored-a", RefreshToken: "stored-r"}, ts.Session())
	reads := st.reads
	_ = ts.Session()
	assert.Equal(t, reads, st.reads, "second read must come from memory")
}

func TestTokenStore_Session_EmptyStorageIsNotError(t *testing.T) {
	ts := NewTokenStore(newMemStorage(), nil)
	assert.Equal(t, Session{}, ts.Session())
}

func TestTokenStore_Session_StorageErrorRetried(t *testing.T) {
	ms := &mockStorage{}
	ms.On("Get", AccessTokenKey).Return("", errors.New("disk on fire")).Once()
	ms.On("Get", RefreshTokenKey).Return("", repo.ErrNotFound).Once()
	ms.On("Get", AccessTokenKey).Return("a", nil).Once()
	ms.On("Get", RefreshTokenKey).Return("r", nil).Once()

	ts := NewTokenStore(ms, nil)
	assert.Equal(t, Session{}, ts.Session())
	assert.Equal(t, Session{AccessToken: "a", RefreshToken: "r"}, ts.Session())
	ms.AssertExpectations(t)
}

func TestTokenStore_ClearSession_RemovesEverything(t *testing.T) {
	st := newMemStorage()
	ts := NewTokenStore(st, nil)
	require.NoError(t, ts.SetSession("a", "r"))
	require.NoError(t, ts.SetCurrentUser(model.User{ID: "u1"}))

	require.NoError(t, ts.ClearSession())
	assert.Equal(t, Session{}, ts.Session())
	_, ok := ts.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, st.data)

	// идемпотентность
	require.NoError(t, ts.ClearSession())
	assert.Equal(t, Session{}, ts.Session())
	_, ok = ts.CurrentUser()
	assert.False(t, ok)

	// свежий экземпляр поверх того же хранилища тоже ничего не видит
	fresh := NewTokenStore(st, nil)
	assert.Equal(t, Session{}, fresh.Session())
	_, ok = fresh.CurrentUser()
	assert.False(t, ok)
}

func TestTokenStore_ClearSession_StorageFailureStillClearsMemory(t *testing.T) {
	ms := &mockStorage{}
	ms.On("Set", mock.Anything, mock.Anything).Return(nil)
	ms.On("Delete", AccessTokenKey, RefreshTokenKey, UserKey).Return(errors.New("readonly fs"))

	ts := NewTokenStore(ms, nil)
	require.NoError(t, ts.SetSession("a", "r"))
	require.NoError(t, ts.SetCurrentUser(model.User{ID: "u1"}))

	assert.Error(t, ts.ClearSession())
	assert.Equal(t, Session{}, ts.Session())
	_, ok := ts.CurrentUser()
	assert.False(t, ok)
	ms.AssertNotCalled(t, "Get", mock.Anything)
}

func TestTokenStore_SequencesEndWithClear(t *testing.T) {
	seqs := [][]string{
		{"set", "clear"},
		{"clear"},
		{"set", "set", "clear"},
		{"clear", "set", "clear"},
		{"set", "clear", "clear"},
	}
	for _, seq := range seqs {
		ts := NewTokenStore(newMemStorage(), nil)
		for i, op := range seq {
			switch op {
			case "set":
				require.NoError(t, ts.SetSession("a"+string(rune('0'+i)), "r"))
			case "clear":
				require.NoError(t, ts.ClearSession())
			}
		}
		assert.Equal(t, Session{}, ts.Session(), "seq %v", seq)
	}
}

func TestTokenStore_CurrentUser_MalformedIsAbsent(t *testing.T) {
	st := newMemStorage()
	st.data[UserKey] = "{not json"
	ts := NewTokenStore(st, nil)

	_, ok := ts.CurrentUser()
	assert.False(t, ok)
}

func TestTokenStore_CurrentUser_RoundTripAcrossInstances(t *testing.T) {
	st := newMemStorage()
	ts := NewTokenStore(st, nil)
	u := model.User{ID: "u1", Email: "ops@erp.io", Name: "Ops", Role: "ADMIN", TenantName: model.PlatformAdminTenant, Tier: model.AdminTier, Permissions: []string{}}
	require.NoError(t, ts.SetCurrentUser(u))

	got, ok := NewTokenStore(st, nil).CurrentUser()
	require.True(t, ok)
	assert.Equal(t, u, got)

	u2 := u
	u2.Name = "Ops 2"
	require.NoError(t, ts.SetCurrentUser(u2))
	got, ok = ts.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ops 2", got.Name)
}

func TestTokenStore_WithFileStorage_SurvivesRestart(t *testing.T) {
	fsStore, err := fsrepo.NewSessionFSStore(t.TempDir())
	require.NoError(t, err)

	ts := NewTokenStore(fsStore, nil)
	require.NoError(t, ts.SetSession("a", "r"))

	restarted := NewTokenStore(fsStore, nil)
	assert.Equal(t, Session{AccessToken: "a", RefreshToken: "r"}, restarted.Session())

	require.NoError(t, restarted.ClearSession())
	assert.Equal(t, Session{}, NewTokenStore(fsStore, nil).Session())
}
