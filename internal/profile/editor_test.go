package profile_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/api/apitest"
	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/profile"
	"github.com/lehigh-university-libraries/pustak/internal/session"
	"github.com/lehigh-university-libraries/pustak/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func loggedIn(t *testing.T) (*apitest.Server, *session.Store, string) {
	t.Helper()
	backend := apitest.New(t)
	backend.AddUser(models.User{Username: "meera", Email: "m@b.com"}, "x")
	backend.AddUser(models.User{Username: "kabir", Email: "k@b.com"}, "x")

	path := filepath.Join(t.TempDir(), "state.json")
	store := session.NewStore(backend.Client(), storage.New(path), nil)
	_, err := store.Login(context.Background(), api.Credentials{Email: "m@b.com", Password: "x"})
	require.NoError(t, err)
	return backend, store, path
}

func TestFormSeededFromSession(t *testing.T) {
	backend, store, _ := loggedIn(t)
	e := profile.New(backend.Client(), store)
	assert.Equal(t, api.ProfileUpdate{Username: "meera", Email: "m@b.com"}, e.Form())
}

func TestUploadPhotoThenSave(t *testing.T) {
	backend, store, path := loggedIn(t)
	e := profile.New(backend.Client(), store)
	ctx := context.Background()

	url, err := e.UploadPhoto(ctx, "me.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/media/image/me.png"))
	assert.Empty(t, store.Current().Identity.ProfilePhoto, "not saved yet")

	f := e.Form()
	f.Username = "meera2"
	e.SetForm(f)
	user, err := e.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "meera2", user.Username)
	assert.Equal(t, url, store.Current().Identity.ProfilePhoto)

	restored := session.NewStore(nil, storage.New(path), nil).Restore(ctx)
	assert.Equal(t, "meera2", restored.Identity.Username)
}

func TestUploadRejectsNonImage(t *testing.T) {
	backend, store, _ := loggedIn(t)
	e := profile.New(backend.Client(), store)

	_, err := e.UploadPhoto(context.Background(), "cv.pdf", strings.NewReader("%PDF-1.7 ..."))
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Please select an image file", ve.Message)
	assert.Zero(t, backend.Calls("POST /upload"))
}

func TestSaveFailureKeepsIdentity(t *testing.T) {
	backend, store, _ := loggedIn(t)
	e := profile.New(backend.Client(), store)

	f := e.Form()
	f.Email = "k@b.com"
	e.SetForm(f)
	_, err := e.Save(context.Background())
	assert.True(t, apperr.IsFetch(err))
	assert.Equal(t, "m@b.com", store.Current().Identity.Email)
}

func TestSaveRequiresLogin(t *testing.T) {
	backend := apitest.New(t)
	store := session.NewStore(backend.Client(), storage.New(filepath.Join(t.TempDir(), "s.json")), nil)
	e := profile.New(backend.Client(), store)

	_, err := e.Save(context.Background())
	assert.ErrorIs(t, err, session.ErrLoginRequired)
}

func TestRequireImageKeepsContent(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 2048)...)
	r, err := profile.RequireImage(bytes.NewReader(data))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, data, buf.Bytes())
}
