package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// BookInput is the create payload of the add-book form
type BookInput struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Author        *int64 `json:"author,omitempty"`
	Category      *int64 `json:"category,omitempty"`
	Genre         string `json:"genre,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	ContentURL    string `json:"content_url,omitempty"`
	FileType      string `json:"file_type,omitempty"`
	Language      string `json:"language,omitempty"`
	IsPaid        bool   `json:"is_paid"`
	Price         string `json:"price,omitempty"`
	PublishedYear int    `json:"published_year,omitempty"`
}

type AuthorInput struct {
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type PoemInput struct {
	Title              string `json:"title"`
	Content            string `json:"content"`
	Author             *int64 `json:"author,omitempty"`
	Category           *int64 `json:"category,omitempty"`
	Language           string `json:"language,omitempty"`
	BackgroundImageURL string `json:"background_image_url,omitempty"`
}

// BookPatch carries the fields an admin may change on an existing book
type BookPatch struct {
	IsActive *bool `json:"is_active,omitempty"`
}

// withActor adds the acting admin's id to a write payload; the API authorizes
// admin writes by it.
type withActor[T any] struct {
	Payload T
	UserID  int64
}

func (w withActor[T]) MarshalJSON() ([]byte, error) {
	return mergeUserID(w.Payload, w.UserID)
}

func (c *Client) CreateBook(ctx context.Context, actor int64, in BookInput) error {
	return c.do(ctx, "POST", "/books", nil, withActor[BookInput]{in, actor}, nil)
}

func (c *Client) UpdateBook(ctx context.Context, actor, id int64, patch BookPatch) error {
	return c.do(ctx, "PUT", fmt.Sprintf("/books/%d", id), nil, withActor[BookPatch]{patch, actor}, nil)
}

func (c *Client) DeleteBook(ctx context.Context, actor, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/books/%d", id), nil, map[string]int64{"user_id": actor}, nil)
}

func (c *Client) CreateAuthor(ctx context.Context, actor int64, in AuthorInput) error {
	return c.do(ctx, "POST", "/authors", nil, withActor[AuthorInput]{in, actor}, nil)
}

func (c *Client) DeleteAuthor(ctx context.Context, actor, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/authors/%d", id), nil, map[string]int64{"user_id": actor}, nil)
}

func (c *Client) CreatePoem(ctx context.Context, actor int64, in PoemInput) error {
	return c.do(ctx, "POST", "/poems", nil, withActor[PoemInput]{in, actor}, nil)
}

func (c *Client) DeletePoem(ctx context.Context, actor, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/poems/%d", id), nil, map[string]int64{"user_id": actor}, nil)
}

func mergeUserID(payload any, userID int64) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["user_id"] = json.RawMessage(fmt.Sprintf("%d", userID))
	return json.Marshal(fields)
}
