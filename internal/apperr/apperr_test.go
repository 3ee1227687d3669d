package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		auth       bool
		notFound   bool
		fetch      bool
		status     int
	}{
		{
			name:       "validation",
			err:        Invalid("rating", "rating must be between 1 and 5"),
			validation: true,
		},
		{
			name:   "auth",
			err:    &AuthError{Status: 401, Message: "Invalid credentials"},
			auth:   true,
			status: 401,
		},
		{
			name:     "wrapped not found",
			err:      fmt.Errorf("load book: %w", &NotFoundError{Resource: "book", ID: 9}),
			notFound: true,
			status:   http.StatusNotFound,
		},
		{
			name:   "fetch",
			err:    &FetchError{Op: "GET /books", Status: 500, Message: "boom"},
			fetch:  true,
			status: 500,
		},
		{
			name: "plain",
			err:  errors.New("x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.auth, IsAuth(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.fetch, IsFetch(tt.err))
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}

func TestFetchErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := &FetchError{Op: "GET /poems", Err: cause}

	assert.Equal(t, "GET /poems: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "GET /books/3: status 502", (&FetchError{Op: "GET /books/3", Status: 502}).Error())
	assert.Equal(t, "book 3 not found", (&NotFoundError{Resource: "book", ID: 3}).Error())
}

func TestRefreshError(t *testing.T) {
	cause := &FetchError{Op: "GET /books", Status: 500}
	err := fmt.Errorf("delete book: %w", &RefreshError{Op: "delete book 5", Err: cause})

	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.True(t, IsFetch(err))
	assert.Equal(t, 500, StatusOf(err))
}
