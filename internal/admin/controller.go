// Package admin implements the admin panel: creating, deactivating and
// deleting catalog resources, each followed by a fresh fetch of what changed.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/confirm"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/session"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBusy = errors.New("another change is in progress")
	// ErrDisposed is returned by calls on, or finishing after, a disposed controller.
	ErrDisposed = errors.New("admin: controller disposed")
	// ErrSuperseded is returned by a refresh overtaken by a newer one of the same kind.
	ErrSuperseded = errors.New("admin: refresh superseded")
)

type Kind string

const (
	Book   Kind = "book"
	Author Kind = "author"
	Poem   Kind = "poem"
)

// ParseKind accepts the singular or plural resource name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")); k {
	case Book, Author, Poem:
		return k, nil
	}
	return "", apperr.Invalid("kind", fmt.Sprintf("unknown resource %q", s))
}

// Backend is the part of the API client the admin panel uses.
type Backend interface {
	Books(ctx context.Context, showAll bool) ([]models.Book, error)
	Authors(ctx context.Context) ([]models.Author, error)
	Poems(ctx context.Context) ([]models.Poem, error)
	Categories(ctx context.Context) ([]models.Category, error)
	PoemCategories(ctx context.Context) ([]models.Category, error)
	Genres(ctx context.Context) ([]models.Genre, error)

	CreateBook(ctx context.Context, actor int64, in api.BookInput) error
	UpdateBook(ctx context.Context, actor, id int64, patch api.BookPatch) error
	DeleteBook(ctx context.Context, actor, id int64) error
	CreateAuthor(ctx context.Context, actor int64, in api.AuthorInput) error
	DeleteAuthor(ctx context.Context, actor, id int64) error
	CreatePoem(ctx context.Context, actor int64, in api.PoemInput) error
	DeletePoem(ctx context.Context, actor, id int64) error
}

// Snapshot is the managed collections as of the last successful refresh.
// Books include inactive ones.
type Snapshot struct {
	Books   []models.Book
	Authors []models.Author
	Poems   []models.Poem
}

type Stats struct {
	Books         int
	ActiveBooks   int
	InactiveBooks int
	Authors       int
	Poems         int
}

type Controller struct {
	backend Backend
	sess    session.Reader

	mu       sync.RWMutex
	snap     Snapshot
	meta     models.Lookups
	snapGen  uint64
	metaGen  uint64
	disposed bool

	busy atomic.Bool
}

func New(backend Backend, sess session.Reader) *Controller {
	return &Controller{backend: backend, sess: sess}
}

// Init loads the collections and the dropdown metadata together. A half
// overtaken by a newer refresh is left to that refresh.
func (c *Controller) Init(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreSuperseded(c.Refresh(gctx)) })
	g.Go(func() error { return ignoreSuperseded(c.RefreshMetadata(gctx)) })
	return g.Wait()
}

// Refresh refetches books, authors and poems. On failure the previous
// snapshot stays. Only the newest refresh publishes.
func (c *Controller) Refresh(ctx context.Context) error {
	gen, err := c.begin(&c.snapGen)
	if err != nil {
		return err
	}

	var next Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		next.Books, err = c.backend.Books(gctx, true)
		return wrap("books", err)
	})
	g.Go(func() (err error) {
		next.Authors, err = c.backend.Authors(gctx)
		return wrap("authors", err)
	})
	g.Go(func() (err error) {
		next.Poems, err = c.backend.Poems(gctx)
		return wrap("poems", err)
	})
	err = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.current(gen, c.snapGen); stale != nil {
		return stale
	}
	if err != nil {
		return err
	}
	c.snap = next
	return nil
}

// RefreshMetadata refetches the lookup collections behind the form dropdowns.
func (c *Controller) RefreshMetadata(ctx context.Context) error {
	gen, err := c.begin(&c.metaGen)
	if err != nil {
		return err
	}

	var next models.Lookups
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		next.Categories, err = c.backend.Categories(gctx)
		return wrap("categories", err)
	})
	g.Go(func() (err error) {
		next.PoemCategories, err = c.backend.PoemCategories(gctx)
		return wrap("poem categories", err)
	})
	g.Go(func() (err error) {
		next.Genres, err = c.backend.Genres(gctx)
		return wrap("genres", err)
	})
	err = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if stale := c.current(gen, c.metaGen); stale != nil {
		return stale
	}
	if err != nil {
		return err
	}
	c.meta = next
	return nil
}

// Dispose discards the results of any in-flight or future refresh and
// rejects further changes.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
}

func (c *Controller) begin(gen *uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return 0, ErrDisposed
	}
	*gen++
	return *gen, nil
}

// current must be called with c.mu held.
func (c *Controller) current(gen, latest uint64) error {
	if c.disposed {
		return ErrDisposed
	}
	if gen != latest {
		return ErrSuperseded
	}
	return nil
}

// Create validates presence of the required fields and creates the resource.
func (c *Controller) Create(ctx context.Context, kind Kind, payload any) error {
	var call func(ctx context.Context, actor int64) error
	switch in := payload.(type) {
	case api.BookInput:
		if kind != Book {
			return mismatch(kind, payload)
		}
		if strings.TrimSpace(in.Title) == "" {
			return apperr.Invalid("title", "Title is required")
		}
		call = func(ctx context.Context, actor int64) error { return c.backend.CreateBook(ctx, actor, in) }
	case api.AuthorInput:
		if kind != Author {
			return mismatch(kind, payload)
		}
		if strings.TrimSpace(in.Name) == "" {
			return apperr.Invalid("name", "Name is required")
		}
		call = func(ctx context.Context, actor int64) error { return c.backend.CreateAuthor(ctx, actor, in) }
	case api.PoemInput:
		if kind != Poem {
			return mismatch(kind, payload)
		}
		if strings.TrimSpace(in.Title) == "" {
			return apperr.Invalid("title", "Title is required")
		}
		if strings.TrimSpace(in.Content) == "" {
			return apperr.Invalid("content", "Content is required")
		}
		call = func(ctx context.Context, actor int64) error { return c.backend.CreatePoem(ctx, actor, in) }
	default:
		return mismatch(kind, payload)
	}
	return c.mutate(ctx, "create "+string(kind), kind == Author, call)
}

// RequestToggleActive asks before flipping a book's active flag.
func (c *Controller) RequestToggleActive(bookID int64, current bool) *confirm.Pending {
	verb := "activate"
	if current {
		verb = "deactivate"
	}
	next := !current
	return confirm.New(fmt.Sprintf("Are you sure you want to %s this book?", verb), func(ctx context.Context) error {
		return c.mutate(ctx, fmt.Sprintf("%s book %d", verb, bookID), false, func(ctx context.Context, actor int64) error {
			return c.backend.UpdateBook(ctx, actor, bookID, api.BookPatch{IsActive: &next})
		})
	})
}

// RequestDelete asks before deleting. Deleting an author also refreshes the
// dropdown metadata.
func (c *Controller) RequestDelete(kind Kind, id int64) (*confirm.Pending, error) {
	var call func(ctx context.Context, actor, id int64) error
	switch kind {
	case Book:
		call = c.backend.DeleteBook
	case Author:
		call = c.backend.DeleteAuthor
	case Poem:
		call = c.backend.DeletePoem
	default:
		return nil, apperr.Invalid("kind", fmt.Sprintf("unknown resource %q", kind))
	}
	prompt := fmt.Sprintf("Are you sure you want to delete this %s? This cannot be undone.", kind)
	return confirm.New(prompt, func(ctx context.Context) error {
		return c.mutate(ctx, fmt.Sprintf("delete %s %d", kind, id), kind == Author, func(ctx context.Context, actor int64) error {
			return call(ctx, actor, id)
		})
	}), nil
}

// mutate runs one admin write, then refreshes. Writes are serialized and a
// refresh failure never undoes an accepted write.
func (c *Controller) mutate(ctx context.Context, op string, withMetadata bool, call func(ctx context.Context, actor int64) error) error {
	s := c.sess.Current()
	if err := session.RequireAdmin(s); err != nil {
		return err
	}
	c.mu.RLock()
	disposed := c.disposed
	c.mu.RUnlock()
	if disposed {
		return ErrDisposed
	}
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	if err := call(ctx, s.UserID()); err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	slog.Info("Admin change applied", "op", op, "user_id", s.UserID())

	refresh := c.Refresh
	if withMetadata {
		refresh = c.Init
	}
	if err := ignoreSuperseded(refresh(ctx)); err != nil {
		if errors.Is(err, ErrDisposed) {
			return nil
		}
		slog.Warn("Refresh after admin change failed", "op", op, "error", err)
		return &apperr.RefreshError{Op: op, Err: err}
	}
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Lookups returns the dropdown metadata, authors taken from the snapshot.
func (c *Controller) Lookups() models.Lookups {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lk := c.meta
	lk.Authors = c.snap.Authors
	return lk
}

func (c *Controller) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Stats{Books: len(c.snap.Books), Authors: len(c.snap.Authors), Poems: len(c.snap.Poems)}
	for _, b := range c.snap.Books {
		if b.IsActive {
			st.ActiveBooks++
		} else {
			st.InactiveBooks++
		}
	}
	return st
}

// FindBook looks a book up in the snapshot.
func (c *Controller) FindBook(id int64) (models.Book, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.snap.Books {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}

func ignoreSuperseded(err error) error {
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

func mismatch(kind Kind, payload any) error {
	return apperr.Invalid("kind", fmt.Sprintf("cannot create %s from %T", kind, payload))
}
