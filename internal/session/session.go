// Package session holds the logged-in identity for the whole process and keeps
// it in durable storage so it survives restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/models"
)

// StorageKey is the durable key the identity is stored under.
const StorageKey = "user"

var (
	ErrLoginRequired   = errors.New("login required")
	ErrAdminRequired   = errors.New("admin access required")
	ErrAlreadyLoggedIn = errors.New("already logged in")
)

// Authenticator is the part of the API client the store delegates to.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (models.User, error)
	Register(ctx context.Context, reg api.Registration) (models.User, error)
}

// Persister is durable keyed storage, satisfied by *storage.Store.
type Persister interface {
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
	Delete(key string) error
}

// Session is an immutable snapshot. A nil Identity means nobody is logged in.
type Session struct {
	Identity *models.User
}

func (s Session) Authenticated() bool { return s.Identity != nil }

// IsAdmin is derived from the identity; it is never stored on its own.
func (s Session) IsAdmin() bool { return s.Identity != nil && s.Identity.IsAdmin }

// UserID returns the identity's id, or 0.
func (s Session) UserID() int64 {
	if s.Identity == nil {
		return 0
	}
	return s.Identity.ID
}

// Reader gives controllers a synchronous view of the current session.
type Reader interface {
	Current() Session
}

type Store struct {
	auth    Authenticator
	persist Persister
	logger  *slog.Logger

	current atomic.Pointer[Session]
	// writeMu orders persist+publish pairs so storage and memory agree.
	writeMu sync.Mutex
}

func NewStore(auth Authenticator, persist Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{auth: auth, persist: persist, logger: logger}
	s.current.Store(&Session{})
	return s
}

// Current returns the live session snapshot.
func (s *Store) Current() Session {
	return *s.current.Load()
}

// Restore loads the persisted identity, if any. Unreadable state is discarded
// and yields an empty session.
func (s *Store) Restore(ctx context.Context) Session {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var user models.User
	found, err := s.persist.Get(StorageKey, &user)
	switch {
	case err != nil:
		s.logger.Warn("Discarding unreadable session", "err", err)
		if derr := s.persist.Delete(StorageKey); derr != nil {
			s.logger.Warn("Unable to remove unreadable session", "err", derr)
		}
		s.current.Store(&Session{})
	case !found || user.ID == 0:
		s.current.Store(&Session{})
	default:
		s.logger.Debug("Restored session", "user_id", user.ID, "username", user.Username)
		s.current.Store(&Session{Identity: &user})
	}
	return s.Current()
}

// Login authenticates against the API. On failure the previous session is
// left exactly as it was and the server's error is returned unmodified.
func (s *Store) Login(ctx context.Context, creds api.Credentials) (Session, error) {
	user, err := s.auth.Login(ctx, creds)
	if err != nil {
		return s.Current(), err
	}
	return s.publish(user)
}

// Register creates an account and logs it in.
func (s *Store) Register(ctx context.Context, reg api.Registration) (Session, error) {
	user, err := s.auth.Register(ctx, reg)
	if err != nil {
		return s.Current(), err
	}
	return s.publish(user)
}

// UpdateIdentity replaces the stored identity wholesale, e.g. after a profile edit.
func (s *Store) UpdateIdentity(user models.User) error {
	_, err := s.publish(user)
	return err
}

// Logout forgets the identity in memory and on disk. Calling it twice is harmless.
func (s *Store) Logout() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.current.Store(&Session{})
	if err := s.persist.Delete(StorageKey); err != nil {
		s.logger.Warn("Unable to remove persisted session", "err", err)
	}
}

func (s *Store) publish(user models.User) (Session, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persist.Set(StorageKey, user); err != nil {
		return s.Current(), fmt.Errorf("failed to persist session: %w", err)
	}
	next := &Session{Identity: &user}
	s.current.Store(next)
	s.logger.Debug("Session updated", "user_id", user.ID, "admin", user.IsAdmin)
	return *next, nil
}

// RequireUser guards pages that need a logged-in user.
func RequireUser(s Session) error {
	if !s.Authenticated() {
		return ErrLoginRequired
	}
	return nil
}

// RequireAdmin guards the admin area. Anonymous callers are sent to login,
// non-admins are turned away.
func RequireAdmin(s Session) error {
	if err := RequireUser(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// RequireAnonymous guards the login and registration pages.
func RequireAnonymous(s Session) error {
	if s.Authenticated() {
		return ErrAlreadyLoggedIn
	}
	return nil
}
