package browse

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/pustak/internal/models"
)

// Catalog is the read side of the API client used by list pages.
type Catalog interface {
	Books(ctx context.Context, showAll bool) ([]models.Book, error)
	Poems(ctx context.Context) ([]models.Poem, error)
	Authors(ctx context.Context) ([]models.Author, error)
	Categories(ctx context.Context) ([]models.Category, error)
	PoemCategories(ctx context.Context) ([]models.Category, error)
	Genres(ctx context.Context) ([]models.Genre, error)
}

// Lookup fetches one auxiliary collection into its own field of the result.
type Lookup struct {
	Name  string
	Fetch func(ctx context.Context, into *models.Lookups) error
}

// Source describes what a list page loads: its items plus the lookups its
// filter controls need.
type Source[T Item] struct {
	Name    string
	Items   func(ctx context.Context) ([]T, error)
	Lookups []Lookup
}

// BookSource loads active books with categories, authors and genres (the home page).
func BookSource(c Catalog) Source[models.Book] {
	return Source[models.Book]{
		Name: "books",
		Items: func(ctx context.Context) ([]models.Book, error) {
			return c.Books(ctx, false)
		},
		Lookups: []Lookup{categories(c), authors(c), genres(c)},
	}
}

// PoemSource loads poems with the poem categories.
func PoemSource(c Catalog) Source[models.Poem] {
	return Source[models.Poem]{
		Name:    "poems",
		Items:   c.Poems,
		Lookups: []Lookup{poemCategories(c)},
	}
}

func categories(c Catalog) Lookup {
	return Lookup{Name: "categories", Fetch: func(ctx context.Context, into *models.Lookups) error {
		v, err := c.Categories(ctx)
		into.Categories = v
		return err
	}}
}

func poemCategories(c Catalog) Lookup {
	return Lookup{Name: "poem categories", Fetch: func(ctx context.Context, into *models.Lookups) error {
		v, err := c.PoemCategories(ctx)
		into.PoemCategories = v
		return err
	}}
}

func authors(c Catalog) Lookup {
	return Lookup{Name: "authors", Fetch: func(ctx context.Context, into *models.Lookups) error {
		v, err := c.Authors(ctx)
		into.Authors = v
		return err
	}}
}

func genres(c Catalog) Lookup {
	return Lookup{Name: "genres", Fetch: func(ctx context.Context, into *models.Lookups) error {
		v, err := c.Genres(ctx)
		into.Genres = v
		return err
	}}
}

func (l Lookup) run(ctx context.Context, into *models.Lookups) error {
	if err := l.Fetch(ctx, into); err != nil {
		return fmt.Errorf("failed to load %s: %w", l.Name, err)
	}
	return nil
}
