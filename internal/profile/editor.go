// Package profile edits the logged-in user's own profile.
package profile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/session"
)

// sniffLen is how much of a file http.DetectContentType looks at.
const sniffLen = 512

type Backend interface {
	Upload(ctx context.Context, kind api.UploadKind, filename string, r io.Reader) (api.UploadResult, error)
	UpdateProfile(ctx context.Context, id int64, in api.ProfileUpdate) (models.User, error)
}

// Identity is the session store as seen by the editor.
type Identity interface {
	session.Reader
	UpdateIdentity(user models.User) error
}

type Editor struct {
	backend Backend
	store   Identity

	mu   sync.Mutex
	form api.ProfileUpdate
}

// New returns an editor whose form is seeded from the current identity.
func New(backend Backend, store Identity) *Editor {
	e := &Editor{backend: backend, store: store}
	if u := store.Current().Identity; u != nil {
		e.form = api.ProfileUpdate{Username: u.Username, Email: u.Email, ProfilePhoto: u.ProfilePhoto}
	}
	return e
}

func (e *Editor) Form() api.ProfileUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

func (e *Editor) SetForm(f api.ProfileUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = f
}

// UploadPhoto uploads an image and puts its URL in the form. It is not saved
// until Save.
func (e *Editor) UploadPhoto(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := session.RequireUser(e.store.Current()); err != nil {
		return "", err
	}
	img, err := RequireImage(r)
	if err != nil {
		return "", err
	}
	res, err := e.backend.Upload(ctx, api.UploadImage, filename, img)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	e.mu.Lock()
	e.form.ProfilePhoto = res.URL
	e.mu.Unlock()
	return res.URL, nil
}

// Save sends the form and replaces the session identity with the server's answer.
func (e *Editor) Save(ctx context.Context) (models.User, error) {
	s := e.store.Current()
	if err := session.RequireUser(s); err != nil {
		return models.User{}, err
	}
	form := e.Form()
	if strings.TrimSpace(form.Username) == "" {
		return models.User{}, apperr.Invalid("username", "Username is required")
	}
	if strings.TrimSpace(form.Email) == "" {
		return models.User{}, apperr.Invalid("email", "Email is required")
	}

	user, err := e.backend.UpdateProfile(ctx, s.UserID(), form)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update profile: %w", err)
	}
	if err := e.store.UpdateIdentity(user); err != nil {
		return models.User{}, err
	}
	e.SetForm(api.ProfileUpdate{Username: user.Username, Email: user.Email, ProfilePhoto: user.ProfilePhoto})
	return user, nil
}

// RequireImage sniffs the start of r and rejects anything that is not an
// image. The returned reader yields the whole content.
func RequireImage(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return nil, apperr.Invalid("profile_photo", "Please select an image file")
	}
	return br, nil
}
