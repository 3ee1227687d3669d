package review

import (
	"context"

	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/models"
)

// Endpoints is the capability a detail page needs from the API for one kind
// of reviewable entity.
type Endpoints[E any] interface {
	LoadEntity(ctx context.Context, id int64) (E, error)
	LoadReviews(ctx context.Context, id int64) ([]models.Review, error)
	SubmitReview(ctx context.Context, id, userID int64, rating int, comment string) error
	DeleteReview(ctx context.Context, id, userID int64) error
}

// Client is the subset of *api.Client used by the book and poem endpoints.
type Client interface {
	Book(ctx context.Context, id int64) (models.Book, error)
	Poem(ctx context.Context, id int64) (models.Poem, error)
	Reviews(ctx context.Context, kind api.Kind, itemID int64) ([]models.Review, error)
	UpsertReview(ctx context.Context, kind api.Kind, itemID, userID int64, rating int, comment string) error
	DeleteUserReview(ctx context.Context, kind api.Kind, itemID, userID int64) error
}

type reviews struct {
	c    Client
	kind api.Kind
}

func (r reviews) LoadReviews(ctx context.Context, id int64) ([]models.Review, error) {
	return r.c.Reviews(ctx, r.kind, id)
}

func (r reviews) SubmitReview(ctx context.Context, id, userID int64, rating int, comment string) error {
	return r.c.UpsertReview(ctx, r.kind, id, userID, rating, comment)
}

func (r reviews) DeleteReview(ctx context.Context, id, userID int64) error {
	return r.c.DeleteUserReview(ctx, r.kind, id, userID)
}

type bookEndpoints struct{ reviews }

func (b bookEndpoints) LoadEntity(ctx context.Context, id int64) (models.Book, error) {
	return b.c.Book(ctx, id)
}

type poemEndpoints struct{ reviews }

func (p poemEndpoints) LoadEntity(ctx context.Context, id int64) (models.Poem, error) {
	return p.c.Poem(ctx, id)
}

func Books(c Client) Endpoints[models.Book] {
	return bookEndpoints{reviews{c: c, kind: api.Books}}
}

func Poems(c Client) Endpoints[models.Poem] {
	return poemEndpoints{reviews{c: c, kind: api.Poems}}
}
