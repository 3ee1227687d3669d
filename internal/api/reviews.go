package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/pustak/internal/models"
)

// Kind selects the reviewable resource collection
type Kind string

// Resource is the singular name used in not-found errors.
func (k Kind) Resource() string {
	return strings.TrimSuffix(string(k), "s")
}

const (
	Books Kind = "books"
	Poems Kind = "poems"
)

func (c *Client) Reviews(ctx context.Context, kind Kind, itemID int64) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.do(ctx, "GET", fmt.Sprintf("/%s/%d/reviews", kind, itemID), nil, nil, &reviews); err != nil {
		return nil, notFound(err, kind.Resource(), itemID)
	}
	return reviews, nil
}

// UpsertReview creates the user's review or replaces the existing one. The API
// keeps a single review per (item, user) pair.
func (c *Client) UpsertReview(ctx context.Context, kind Kind, itemID, userID int64, rating int, comment string) error {
	body := map[string]any{
		"user_id": userID,
		"rating":  rating,
		"comment": comment,
	}
	return c.do(ctx, "POST", fmt.Sprintf("/%s/%d/reviews", kind, itemID), nil, body, nil)
}

func (c *Client) DeleteUserReview(ctx context.Context, kind Kind, itemID, userID int64) error {
	body := map[string]any{"user_id": userID}
	return c.do(ctx, "DELETE", fmt.Sprintf("/%s/%d/reviews/user", kind, itemID), nil, body, nil)
}
