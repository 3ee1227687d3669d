package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/api/apitest"
	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	mu     sync.Mutex
	user   models.User
	err    error
	logins int
}

func (a *stubAuth) Login(_ context.Context, _ api.Credentials) (models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logins++
	return a.user, a.err
}

func (a *stubAuth) Register(_ context.Context, reg api.Registration) (models.User, error) {
	if a.err != nil {
		return models.User{}, a.err
	}
	return models.User{ID: 2, Username: reg.Username, Email: reg.Email}, nil
}

type failingPersister struct{}

func (failingPersister) Get(string, any) (bool, error) { return false, nil }
func (failingPersister) Set(string, any) error         { return errors.New("disk full") }
func (failingPersister) Delete(string) error           { return nil }

func TestRestoreLoginRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	auth := &stubAuth{user: models.User{ID: 1, Username: "a", IsAdmin: false}}
	ctx := context.Background()

	store := NewStore(auth, storage.New(path), nil)
	s := store.Restore(ctx)
	assert.False(t, s.Authenticated(), "nothing persisted yet")

	s, err := store.Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.False(t, s.IsAdmin())
	assert.Equal(t, int64(1), s.UserID())

	// A fresh store over the same file simulates a reload.
	reloaded := NewStore(auth, storage.New(path), nil)
	s = reloaded.Restore(ctx)
	require.True(t, s.Authenticated())
	assert.Equal(t, "a", s.Identity.Username)
	assert.Equal(t, 1, auth.logins, "restore must not log in again")
}

func TestLoginFailureKeepsPreviousSession(t *testing.T) {
	auth := &stubAuth{user: models.User{ID: 1, Username: "a"}}
	store := NewStore(auth, storage.New(filepath.Join(t.TempDir(), "s.json")), nil)
	ctx := context.Background()

	_, err := store.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	auth.err = &apperr.AuthError{Status: 401, Message: "Invalid credentials"}
	s, err := store.Login(ctx, api.Credentials{})

	var ae *apperr.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Invalid credentials", ae.Message)
	assert.Equal(t, int64(1), s.UserID())
	assert.Equal(t, int64(1), store.Current().UserID())
}

func TestPersistFailureLeavesMemoryUntouched(t *testing.T) {
	store := NewStore(&stubAuth{user: models.User{ID: 5}}, failingPersister{}, nil)

	_, err := store.Login(context.Background(), api.Credentials{})
	assert.Error(t, err)
	assert.False(t, store.Current().Authenticated())
}

func TestLogoutIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	store := NewStore(&stubAuth{user: models.User{ID: 1}}, storage.New(path), nil)
	ctx := context.Background()

	_, err := store.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	store.Logout()
	store.Logout()
	assert.False(t, store.Current().Authenticated())
	assert.False(t, NewStore(nil, storage.New(path), nil).Restore(ctx).Authenticated())
}

func TestUpdateIdentityReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	store := NewStore(&stubAuth{user: models.User{ID: 1, Username: "a", Email: "a@b.com", ProfilePhoto: "p.png"}}, storage.New(path), nil)
	ctx := context.Background()
	_, err := store.Login(ctx, api.Credentials{})
	require.NoError(t, err)

	require.NoError(t, store.UpdateIdentity(models.User{ID: 1, Username: "b"}))

	got := NewStore(nil, storage.New(path), nil).Restore(ctx)
	assert.Equal(t, "b", got.Identity.Username)
	assert.Empty(t, got.Identity.Email, "fields are not merged")
	assert.Empty(t, got.Identity.ProfilePhoto)
}

func TestRestoreDiscardsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"user": "not an object"}`), 0o600))

	s := NewStore(nil, storage.New(path), nil).Restore(context.Background())
	assert.False(t, s.Authenticated())

	found, err := storage.New(path).Get(StorageKey, &models.User{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegisterAgainstBackend(t *testing.T) {
	backend := apitest.New(t)
	store := NewStore(backend.Client(), storage.New(filepath.Join(t.TempDir(), "s.json")), nil)

	s, err := store.Register(context.Background(), api.Registration{Username: "kabir", Email: "k@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "kabir", s.Identity.Username)

	store.Logout()
	_, err = store.Register(context.Background(), api.Registration{Username: "kabir2", Email: "k@b.com", Password: "secret1"})
	assert.True(t, apperr.IsAuth(err))
	assert.False(t, store.Current().Authenticated())
}

func TestGuards(t *testing.T) {
	anon := Session{}
	user := Session{Identity: &models.User{ID: 1}}
	admin := Session{Identity: &models.User{ID: 2, IsAdmin: true}}

	assert.ErrorIs(t, RequireUser(anon), ErrLoginRequired)
	assert.NoError(t, RequireUser(user))

	assert.ErrorIs(t, RequireAdmin(anon), ErrLoginRequired)
	assert.ErrorIs(t, RequireAdmin(user), ErrAdminRequired)
	assert.NoError(t, RequireAdmin(admin))

	assert.NoError(t, RequireAnonymous(anon))
	assert.ErrorIs(t, RequireAnonymous(user), ErrAlreadyLoggedIn)
}

func TestConcurrentReadsSeeWholeSnapshots(t *testing.T) {
	store := NewStore(&stubAuth{}, storage.New(filepath.Join(t.TempDir(), "s.json")), nil)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			_ = store.UpdateIdentity(models.User{ID: id, Username: "u", IsAdmin: id%2 == 0})
		}(int64(i))
		go func() {
			defer wg.Done()
			s := store.Current()
			if s.Identity != nil {
				assert.Equal(t, s.Identity.ID%2 == 0, s.IsAdmin())
			}
		}()
	}
	wg.Wait()
}
