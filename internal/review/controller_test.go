package review_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/lehigh-university-libraries/pustak/internal/api/apitest"
	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/confirm"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/review"
	"github.com/lehigh-university-libraries/pustak/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type fixedSession struct{ s session.Session }

func (f fixedSession) Current() session.Session { return f.s }

func as(u models.User) fixedSession { return fixedSession{session.Session{Identity: &u}} }

type fixture struct {
	backend *apitest.Server
	reader  models.User
	other   models.User
	book    models.Book
}

func setup(t *testing.T) fixture {
	t.Helper()
	backend := apitest.New(t)
	f := fixture{
		backend: backend,
		reader:  backend.AddUser(models.User{Username: "meera", Email: "m@b.com"}, "x"),
		other:   backend.AddUser(models.User{Username: "kabir", Email: "k@b.com"}, "x"),
		book:    backend.AddBook(models.Book{Title: "Godan", IsActive: true}),
	}
	return f
}

func (f fixture) open(t *testing.T) *review.Controller[models.Book] {
	t.Helper()
	c := review.New(review.Books(f.backend.Client()), as(f.reader), f.book.ID)
	require.NoError(t, c.Open(context.Background()))
	return c
}

func TestOpenPartitionsMyReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	client := f.backend.Client()
	require.NoError(t, client.UpsertReview(ctx, "books", f.book.ID, f.other.ID, 2, "slow"))
	require.NoError(t, client.UpsertReview(ctx, "books", f.book.ID, f.reader.ID, 4, "moving"))

	c := f.open(t)
	assert.Equal(t, review.Ready, c.State())
	assert.Len(t, c.Reviews(), 2)

	mine := c.MyReview()
	require.NotNil(t, mine)
	assert.Equal(t, 4, mine.Rating)
	assert.Equal(t, review.Form{Rating: 4, Comment: "moving"}, c.Form())

	book, ok := c.Entity()
	require.True(t, ok)
	assert.Equal(t, 2, book.ReviewCount)
	assert.Equal(t, 3.0, book.AverageRating)
}

func TestFormDefaultsWithoutReview(t *testing.T) {
	c := setup(t).open(t)
	assert.Nil(t, c.MyReview())
	assert.Equal(t, review.Form{Rating: review.DefaultRating}, c.Form())
}

func TestOpenMissingEntity(t *testing.T) {
	f := setup(t)
	c := review.New(review.Books(f.backend.Client()), as(f.reader), 9999)

	err := c.Open(context.Background())
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, review.NotFound, c.State())

	_, ok := c.Entity()
	assert.False(t, ok)
}

func TestOpenFetchFailure(t *testing.T) {
	f := setup(t)
	f.backend.Fail("GET /books/:id/reviews", http.StatusInternalServerError)
	c := review.New(review.Books(f.backend.Client()), as(f.reader), f.book.ID)

	err := c.Open(context.Background())
	assert.True(t, apperr.IsFetch(err))
	assert.Equal(t, review.LoadError, c.State())
}

func TestRatingValidationSendsNothing(t *testing.T) {
	f := setup(t)
	c := f.open(t)
	f.backend.ResetCalls()

	for _, rating := range []int{0, 6, -1} {
		err := c.SubmitReview(context.Background(), rating, "")
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve, "rating %d", rating)
		assert.Equal(t, "rating", ve.Field)
	}
	assert.Zero(t, f.backend.Calls("POST /books/:id/reviews"))

	require.NoError(t, c.SubmitReview(context.Background(), 3, "fine"))
	assert.Equal(t, 1, f.backend.Calls("POST /books/:id/reviews"))
}

func TestSubmitTwiceKeepsOneReview(t *testing.T) {
	f := setup(t)
	c := f.open(t)
	ctx := context.Background()

	require.NoError(t, c.SubmitReview(ctx, 5, "loved it"))
	require.NoError(t, c.SubmitReview(ctx, 3, "on reflection"))

	reviews := c.Reviews()
	mine := 0
	for _, r := range reviews {
		if r.User == f.reader.ID {
			mine++
		}
	}
	assert.Equal(t, 1, mine)
	assert.Equal(t, 3, c.MyReview().Rating)

	book, _ := c.Entity()
	assert.Equal(t, 1, book.ReviewCount, "aggregates come from the refetch")
	assert.Equal(t, 3.0, book.AverageRating)
}

func TestSubmitFailureLeavesStateUnchanged(t *testing.T) {
	f := setup(t)
	c := f.open(t)
	before, _ := c.Entity()

	f.backend.Fail("POST /books/:id/reviews", http.StatusInternalServerError)
	err := c.SubmitReview(context.Background(), 4, "x")
	assert.True(t, apperr.IsFetch(err))
	assert.Equal(t, review.Ready, c.State())
	assert.Error(t, c.Err())

	after, _ := c.Entity()
	assert.Equal(t, before, after)
	assert.Empty(t, c.Reviews())
}

func TestSubmitRequiresLogin(t *testing.T) {
	f := setup(t)
	c := review.New(review.Books(f.backend.Client()), fixedSession{}, f.book.ID)
	require.NoError(t, c.Open(context.Background()))

	assert.ErrorIs(t, c.SubmitReview(context.Background(), 4, ""), session.ErrLoginRequired)
}

func TestSubmitWhileBusy(t *testing.T) {
	f := setup(t)
	c := f.open(t)
	release := f.backend.Hold("POST /books/:id/reviews")

	done := make(chan error, 1)
	go func() { done <- c.SubmitReview(context.Background(), 4, "first") }()

	require.Eventually(t, func() bool { return c.State() == review.SubmittingReview }, testTimeout, tick)
	assert.ErrorIs(t, c.SubmitReview(context.Background(), 2, "second"), review.ErrBusy)

	release()
	require.NoError(t, <-done)
	assert.Equal(t, review.Ready, c.State())
	assert.Len(t, f.backend.Reviews("books", f.book.ID), 1)
}

func TestSubmitBeforeLoad(t *testing.T) {
	f := setup(t)
	c := review.New(review.Books(f.backend.Client()), as(f.reader), f.book.ID)
	assert.ErrorIs(t, c.SubmitReview(context.Background(), 4, ""), review.ErrNotReady)
}

func TestDeleteMyReview(t *testing.T) {
	f := setup(t)
	c := f.open(t)
	ctx := context.Background()
	require.NoError(t, c.SubmitReview(ctx, 4, "good"))

	pending, err := c.RequestDeleteMyReview()
	require.NoError(t, err)
	require.NoError(t, pending.Commit(ctx))

	assert.Nil(t, c.MyReview())
	assert.Empty(t, c.Reviews())
	assert.Equal(t, review.Form{Rating: review.DefaultRating}, c.Form())

	reviews, err := c.LoadReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	assert.ErrorIs(t, pending.Commit(ctx), confirm.ErrSettled)
}

func TestCancelledDeleteSendsNothing(t *testing.T) {
	f := setup(t)
	c := f.open(t)
	ctx := context.Background()
	require.NoError(t, c.SubmitReview(ctx, 4, "good"))

	pending, err := c.RequestDeleteMyReview()
	require.NoError(t, err)
	pending.Cancel()

	assert.Zero(t, f.backend.Calls("DELETE /books/:id/reviews/user"))
	assert.NotNil(t, c.MyReview())
}

func TestDeleteNotOfferedWithoutReview(t *testing.T) {
	c := setup(t).open(t)
	_, err := c.RequestDeleteMyReview()
	assert.ErrorIs(t, err, review.ErrNoReview)
}

func TestRefreshFailureAfterSubmit(t *testing.T) {
	f := setup(t)
	c := f.open(t)
	f.backend.Fail("GET /books/:id", http.StatusBadGateway)

	err := c.SubmitReview(context.Background(), 5, "")
	assert.ErrorIs(t, err, apperr.ErrRefreshFailed)
	assert.Equal(t, review.Ready, c.State())
	assert.Len(t, f.backend.Reviews("books", f.book.ID), 1, "the mutation is not rolled back")
}

func TestDisposeDropsLateResponses(t *testing.T) {
	f := setup(t)
	release := f.backend.Hold("GET /books/:id")
	c := review.New(review.Books(f.backend.Client()), as(f.reader), f.book.ID)

	done := make(chan error, 1)
	go func() { done <- c.Open(context.Background()) }()
	c.Dispose()
	release()

	assert.ErrorIs(t, <-done, review.ErrDisposed)
	_, ok := c.Entity()
	assert.False(t, ok)
}

func TestPoemDetail(t *testing.T) {
	f := setup(t)
	p := f.backend.AddPoem(models.Poem{Title: "Madhushala", Content: "..."})
	c := review.New(review.Poems(f.backend.Client()), as(f.reader), p.ID)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx))
	require.NoError(t, c.SubmitReview(ctx, 5, "timeless"))

	poem, _ := c.Entity()
	assert.Equal(t, 1, poem.ReviewCount)
	assert.Equal(t, 5, c.MyReview().Rating)
}
