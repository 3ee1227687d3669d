package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lehigh-university-libraries/pustak/internal/browse"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/render"
	"github.com/lehigh-university-libraries/pustak/internal/review"
	"github.com/spf13/cobra"
)

type filterFlags struct {
	category int64
	author   int64
	genre    string
	search   string
}

func (f *filterFlags) register(cmd *cobra.Command, books bool) {
	cmd.Flags().Int64Var(&f.category, "category", 0, "Only this category id")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Case-insensitive match on title, author or category")
	if books {
		cmd.Flags().Int64Var(&f.author, "author", 0, "Only this author id")
		cmd.Flags().StringVar(&f.genre, "genre", "", "Only this genre value")
	}
}

func (f filterFlags) filter() browse.Filter {
	return browse.Filter{
		Category: optionalID(f.category),
		Author:   optionalID(f.author),
		Genre:    f.genre,
		Text:     f.search,
	}
}

// loadFiltered loads a list page and applies the filter to it.
func loadFiltered[T browse.Item](ctx context.Context, src browse.Source[T], f browse.Filter) ([]T, int, models.Lookups, error) {
	c := browse.New(src)
	defer c.Dispose()
	items, err := c.Load(ctx)
	if err != nil {
		return nil, 0, models.Lookups{}, err
	}
	return c.ApplyFilters(f), len(items), c.Lookups(), nil
}

func runList[T browse.Item](ctx context.Context, a *app, src browse.Source[T], f browse.Filter, headers []string, row func(T) []string) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	items, total, _, err := loadFiltered(ctx, src, f)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.println("No results found")
		return nil
	}

	r, err := a.renderer()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, row(it))
	}
	a.println(r.Table(headers, rows))
	if !f.Empty() {
		a.printf("\n%d of %d shown", len(items), total)
		if n := f.ActiveCount(); n > 0 {
			a.printf(" (%d filters active)", n)
		}
		a.println("")
	}
	return nil
}

func runFilters[T browse.Item](ctx context.Context, a *app, src browse.Source[T]) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	_, _, lk, err := loadFiltered(ctx, src, browse.Filter{})
	if err != nil {
		return err
	}
	r, err := a.renderer()
	if err != nil {
		return err
	}

	section := func(title string, rows [][]string) {
		if len(rows) == 0 {
			return
		}
		a.println(r.Styles().Heading.Render(title))
		a.println(r.Table([]string{"VALUE", "NAME"}, rows))
	}
	section("Categories", categoryRows(lk.Categories))
	section("Poem categories", categoryRows(lk.PoemCategories))
	authors := make([][]string, 0, len(lk.Authors))
	for _, au := range lk.Authors {
		authors = append(authors, []string{strconv.FormatInt(au.ID, 10), au.Name})
	}
	section("Authors", authors)
	genres := make([][]string, 0, len(lk.Genres))
	for _, g := range lk.Genres {
		genres = append(genres, []string{g.Value, g.Label})
	}
	section("Genres", genres)
	return nil
}

func categoryRows(cs []models.Category) [][]string {
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name})
	}
	return rows
}

func runShow[E any](ctx context.Context, a *app, ep review.Endpoints[E], id int64, card func(*render.Renderer, E) string) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	c := review.New(ep, a.session, id)
	defer c.Dispose()
	if err := c.Open(ctx); err != nil {
		return err
	}

	r, err := a.renderer()
	if err != nil {
		return err
	}
	entity, _ := c.Entity()
	a.println(card(r, entity))
	a.println("")
	a.println(r.Reviews(c.Reviews(), c.MyReview()))
	return nil
}

type reviewFlags struct {
	rating  int
	comment string
}

func (f *reviewFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.rating, "rating", "r", 0, "Rating from 1 to 5 (defaults to your current rating, or 5)")
	cmd.Flags().StringVarP(&f.comment, "comment", "m", "", "Review text (defaults to your current comment)")
}

// runReview creates or updates the user's review. Unset flags keep the
// values of the existing review.
func runReview[E any](cmd *cobra.Command, a *app, ep review.Endpoints[E], id int64, f reviewFlags) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	ctx := cmd.Context()
	c := review.New(ep, a.session, id)
	defer c.Dispose()
	if err := c.Open(ctx); err != nil {
		return err
	}

	form := c.Form()
	if cmd.Flags().Changed("rating") {
		form.Rating = f.rating
	}
	if cmd.Flags().Changed("comment") {
		form.Comment = f.comment
	}
	done := "Review added: "
	if c.MyReview() != nil {
		done = "Review updated: "
	}
	err := c.SubmitReview(ctx, form.Rating, form.Comment)
	return reportMutation(a, err, done+render.Stars(float64(form.Rating)))
}

func runUnreview[E any](ctx context.Context, a *app, ep review.Endpoints[E], id int64) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	c := review.New(ep, a.session, id)
	defer c.Dispose()
	if err := c.Open(ctx); err != nil {
		return err
	}

	p, err := c.RequestDeleteMyReview()
	if err != nil {
		return err
	}
	return reportMutation(a, a.confirm(ctx, p), "Review deleted")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func ratingCell(avg float64, count int) string {
	if count == 0 {
		return "-"
	}
	return fmt.Sprintf("%s %.1f", render.Stars(avg), avg)
}
