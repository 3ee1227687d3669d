package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/models"
)

// Books lists books. showAll includes inactive books and is only honored for admins.
func (c *Client) Books(ctx context.Context, showAll bool) ([]models.Book, error) {
	var query url.Values
	if showAll {
		query = url.Values{"show_all": {"true"}}
	}
	var books []models.Book
	if err := c.do(ctx, "GET", "/books", query, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) Book(ctx context.Context, id int64) (models.Book, error) {
	var book models.Book
	if err := c.do(ctx, "GET", fmt.Sprintf("/books/%d", id), nil, nil, &book); err != nil {
		return models.Book{}, notFound(err, "book", id)
	}
	return book, nil
}

func (c *Client) Poems(ctx context.Context) ([]models.Poem, error) {
	var poems []models.Poem
	if err := c.do(ctx, "GET", "/poems", nil, nil, &poems); err != nil {
		return nil, err
	}
	return poems, nil
}

// Poem selects one poem out of the full listing; the API has no single-poem read.
func (c *Client) Poem(ctx context.Context, id int64) (models.Poem, error) {
	poems, err := c.Poems(ctx)
	if err != nil {
		return models.Poem{}, err
	}
	for _, p := range poems {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Poem{}, &apperr.NotFoundError{Resource: "poem", ID: id}
}

func (c *Client) Authors(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	if err := c.do(ctx, "GET", "/authors", nil, nil, &authors); err != nil {
		return nil, err
	}
	return authors, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.do(ctx, "GET", "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) PoemCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.do(ctx, "GET", "/poem-categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) Genres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	if err := c.do(ctx, "GET", "/genres", nil, nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}
