// Package review drives a detail page: one book or poem, its review list and
// the current user's own review.
package review

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/confirm"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/session"
	"golang.org/x/sync/errgroup"
)

// DefaultRating seeds the form when the user has not reviewed the entity yet.
const DefaultRating = 5

var (
	ErrBusy     = errors.New("a review change is already in progress")
	ErrNotReady = errors.New("entity is not loaded")
	ErrNoReview = errors.New("you have not reviewed this item")
	ErrDisposed = errors.New("review: controller disposed")
)

type State int

const (
	Loading State = iota
	Ready
	NotFound
	LoadError
	// SubmittingReview covers any review mutation in flight, including delete.
	SubmittingReview
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case NotFound:
		return "not found"
	case LoadError:
		return "load error"
	case SubmittingReview:
		return "submitting review"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Form holds the edit values for the current user's review.
type Form struct {
	Rating  int
	Comment string
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperr.Invalid("rating", "Rating must be between 1 and 5")
	}
	return nil
}

type Controller[E any] struct {
	ep   Endpoints[E]
	sess session.Reader
	id   int64

	mu            sync.Mutex
	state         State
	entity        E
	reviews       []models.Review
	mine          *models.Review
	form          Form
	err           error
	loadedEntity  bool
	loadedReviews bool
	disposed      bool
}

func New[E any](ep Endpoints[E], sess session.Reader, id int64) *Controller[E] {
	return &Controller[E]{
		ep:    ep,
		sess:  sess,
		id:    id,
		state: Loading,
		form:  Form{Rating: DefaultRating},
	}
}

// Open loads the entity and its reviews together. Either failure fails both.
func (c *Controller[E]) Open(ctx context.Context) error {
	entity, reviews, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	if err != nil {
		c.fail(err)
		return err
	}
	c.setEntity(entity)
	c.setReviews(reviews)
	return nil
}

func (c *Controller[E]) LoadEntity(ctx context.Context) (E, error) {
	entity, err := c.ep.LoadEntity(ctx, c.id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		var zero E
		return zero, ErrDisposed
	}
	if err != nil {
		c.fail(err)
		return entity, err
	}
	c.setEntity(entity)
	return entity, nil
}

func (c *Controller[E]) LoadReviews(ctx context.Context) ([]models.Review, error) {
	reviews, err := c.ep.LoadReviews(ctx, c.id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil, ErrDisposed
	}
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.setReviews(reviews)
	return slices.Clone(c.reviews), nil
}

// SubmitReview creates or replaces the user's review through the single
// upsert endpoint, then refetches the entity and the review list.
func (c *Controller[E]) SubmitReview(ctx context.Context, rating int, comment string) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	s := c.sess.Current()
	if err := session.RequireUser(s); err != nil {
		return err
	}
	if err := c.begin(); err != nil {
		return err
	}

	if err := c.ep.SubmitReview(ctx, c.id, s.UserID(), rating, comment); err != nil {
		c.abort(err)
		return fmt.Errorf("failed to submit review: %w", err)
	}
	return c.reload(ctx, "submit review")
}

// RequestDeleteMyReview returns the confirmation step for deleting the user's
// review. Nothing is sent until it is committed.
func (c *Controller[E]) RequestDeleteMyReview() (*confirm.Pending, error) {
	c.mu.Lock()
	state, mine := c.state, c.mine
	c.mu.Unlock()

	if state != Ready {
		return nil, ErrNotReady
	}
	if mine == nil {
		return nil, ErrNoReview
	}
	userID := mine.User
	return confirm.New("Are you sure you want to delete your review?", func(ctx context.Context) error {
		return c.deleteMyReview(ctx, userID)
	}), nil
}

func (c *Controller[E]) deleteMyReview(ctx context.Context, userID int64) error {
	if err := c.begin(); err != nil {
		return err
	}
	if err := c.ep.DeleteReview(ctx, c.id, userID); err != nil {
		c.abort(err)
		return fmt.Errorf("failed to delete review: %w", err)
	}

	c.mu.Lock()
	c.mine = nil
	c.form = Form{Rating: DefaultRating}
	c.mu.Unlock()
	return c.reload(ctx, "delete review")
}

// Dispose drops every response that arrives afterwards.
func (c *Controller[E]) Dispose() {
	c.mu.Lock()
	c.disposed = true
	c.mu.Unlock()
}

func (c *Controller[E]) ID() int64 { return c.id }

func (c *Controller[E]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Entity returns the loaded entity and whether one has been loaded.
func (c *Controller[E]) Entity() (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entity, c.loadedEntity
}

// Reviews is the full review list, the user's own review included.
func (c *Controller[E]) Reviews() []models.Review {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.reviews)
}

func (c *Controller[E]) MyReview() *models.Review {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mine == nil {
		return nil
	}
	r := *c.mine
	return &r
}

func (c *Controller[E]) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Err is the most recent load or mutation failure.
func (c *Controller[E]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller[E]) fetch(ctx context.Context) (E, []models.Review, error) {
	var (
		entity  E
		reviews []models.Review
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entity, err = c.ep.LoadEntity(gctx, c.id)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = c.ep.LoadReviews(gctx, c.id)
		return err
	})
	err := g.Wait()
	return entity, reviews, err
}

// begin moves Ready to SubmittingReview.
func (c *Controller[E]) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.disposed:
		return ErrDisposed
	case c.state == SubmittingReview:
		return ErrBusy
	case c.state != Ready:
		return ErrNotReady
	}
	c.state = SubmittingReview
	c.err = nil
	return nil
}

// abort returns to Ready after a rejected mutation. Entity and reviews are untouched.
func (c *Controller[E]) abort(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.state = Ready
	c.err = err
}

// reload refetches after a successful mutation. A failed refetch keeps the
// previous data and reports a RefreshError.
func (c *Controller[E]) reload(ctx context.Context, op string) error {
	c.mu.Lock()
	disposed := c.disposed
	c.mu.Unlock()
	if disposed {
		return nil
	}

	entity, reviews, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil
	}
	c.state = Ready
	if err != nil {
		c.err = err
		return &apperr.RefreshError{Op: op, Err: err}
	}
	c.setEntity(entity)
	c.setReviews(reviews)
	return nil
}

// fail records a load error. Data already on screen stays.
func (c *Controller[E]) fail(err error) {
	c.err = err
	if c.state == Ready || c.state == SubmittingReview {
		return
	}
	if apperr.IsNotFound(err) {
		c.state = NotFound
	} else {
		c.state = LoadError
	}
}

func (c *Controller[E]) setEntity(entity E) {
	c.entity = entity
	c.loadedEntity = true
	c.settle()
}

// setReviews partitions out the current user's review and seeds the form from it.
func (c *Controller[E]) setReviews(reviews []models.Review) {
	c.reviews = reviews
	c.loadedReviews = true
	c.mine = nil
	c.form = Form{Rating: DefaultRating}
	if uid := c.sess.Current().UserID(); uid != 0 {
		for i := range reviews {
			if reviews[i].User == uid {
				r := reviews[i]
				c.mine = &r
				c.form = Form{Rating: r.Rating, Comment: r.Comment}
				break
			}
		}
	}
	c.settle()
}

func (c *Controller[E]) settle() {
	if c.loadedEntity && c.loadedReviews && c.state != SubmittingReview {
		c.state = Ready
		c.err = nil
	}
}
