package browse_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/pustak/internal/api/apitest"
	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/browse"
	"github.com/lehigh-university-libraries/pustak/internal/models"
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

func seed(t *testing.T) *apitest.Server {
	t.Helper()
	backend := apitest.New(t)
	fiction := backend.AddCategory(models.Category{Name: "Fiction"})
	premchand := backend.AddAuthor(models.Author{Name: "Premchand"})
	backend.AddGenre(models.Genre{Value: "fiction", Label: "Fiction"})
	backend.AddBook(models.Book{Title: "Hindi Tales", Author: &premchand.ID, AuthorName: "Premchand", Category: &fiction.ID, CategoryName: "Fiction", Genre: "fiction", IsActive: true})
	backend.AddBook(models.Book{Title: "Gitanjali", AuthorName: "Tagore", IsActive: true})
	backend.AddBook(models.Book{Title: "Withdrawn", IsActive: false})
	return backend
}

func TestLoadBooks(t *testing.T) {
	backend := seed(t)
	c := browse.New(browse.BookSource(backend.Client()))
	assert.Equal(t, browse.Idle, c.State())

	items, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2, "inactive books are hidden from the home page")
	assert.Equal(t, browse.Ready, c.State())

	lk := c.Lookups()
	assert.Len(t, lk.Categories, 1)
	assert.Len(t, lk.Authors, 1)
	assert.Len(t, lk.Genres, 1)

	got := c.ApplyFilters(browse.Filter{Text: "HIND"})
	require.Len(t, got, 1)
	assert.Equal(t, "Hindi Tales", got[0].Title)
	assert.Len(t, c.Items(), 2, "filtering never narrows the loaded collection")

	assert.Len(t, c.ClearFilters(), 2)
}

func TestFilterIsAppliedToReload(t *testing.T) {
	backend := seed(t)
	c := browse.New(browse.BookSource(backend.Client()))
	ctx := context.Background()

	_, err := c.Load(ctx)
	require.NoError(t, err)
	c.ApplyFilters(browse.Filter{Text: "gita"})

	backend.AddBook(models.Book{Title: "Gitanjali II", IsActive: true})
	items, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, backend.Calls("GET /books"))
}

func TestEmptyResultIsReady(t *testing.T) {
	backend := seed(t)
	c := browse.New(browse.BookSource(backend.Client()))
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, c.ApplyFilters(browse.Filter{Text: "no such book"}))
	assert.Equal(t, browse.Ready, c.State())
	assert.NoError(t, c.Err())
}

func TestLookupFailureFailsWholeLoad(t *testing.T) {
	backend := seed(t)
	backend.Fail("GET /genres", http.StatusInternalServerError)
	c := browse.New(browse.BookSource(backend.Client()))

	items, err := c.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, items)
	assert.Contains(t, err.Error(), "genres")
	assert.True(t, apperr.IsFetch(err))
	assert.Equal(t, browse.LoadError, c.State())
	assert.Empty(t, c.Items(), "no partial data is published")
}

func TestRefreshFailureKeepsStaleData(t *testing.T) {
	backend := seed(t)
	c := browse.New(browse.BookSource(backend.Client()))
	ctx := context.Background()

	_, err := c.Load(ctx)
	require.NoError(t, err)

	backend.Fail("GET /books", http.StatusBadGateway)
	_, err = c.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, browse.Ready, c.State())
	assert.Len(t, c.Items(), 2)
	assert.Error(t, c.Err())

	backend.Recover("GET /books")
	_, err = c.Load(ctx)
	require.NoError(t, err)
	assert.NoError(t, c.Err())
}

func TestDisposeDiscardsLateResults(t *testing.T) {
	backend := seed(t)
	release := backend.Hold("GET /books")
	c := browse.New(browse.BookSource(backend.Client()))

	done := make(chan error, 1)
	go func() {
		_, err := c.Load(context.Background())
		done <- err
	}()

	c.Dispose()
	release()
	assert.ErrorIs(t, <-done, browse.ErrDisposed)
	assert.Empty(t, c.Items())

	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, browse.ErrDisposed)
}

func TestLoadPoems(t *testing.T) {
	backend := apitest.New(t)
	hindi := backend.AddPoemCategory(models.Category{Name: "Hindi"})
	backend.AddPoem(models.Poem{Title: "Madhushala", Category: &hindi.ID, CategoryName: "Hindi"})
	backend.AddPoem(models.Poem{Title: "Ode to a Nightingale"})

	c := browse.New(browse.PoemSource(backend.Client()))
	items, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Len(t, c.Lookups().PoemCategories, 1)

	got := c.ApplyFilters(browse.Filter{Category: &hindi.ID})
	require.Len(t, got, 1)
	assert.Equal(t, "Madhushala", got[0].Title)
	assert.Equal(t, 1, c.ActiveFilterCount())
}

func TestNewerLoadWins(t *testing.T) {
	backend := seed(t)
	c := browse.New(browse.BookSource(backend.Client()))
	ctx := context.Background()
	release := backend.HoldNext("GET /books")
	defer release()

	done := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return backend.Calls("GET /books") == 1 }, 2*time.Second, 5*time.Millisecond)

	backend.AddBook(models.Book{Title: "Godan", IsActive: true})
	items, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	backend.AddBook(models.Book{Title: "Gaban", IsActive: true})
	release()

	assert.ErrorIs(t, <-done, browse.ErrSuperseded)
	assert.Len(t, c.Items(), 3, "the overtaken load does not publish")
	assert.Equal(t, browse.Ready, c.State())
}
