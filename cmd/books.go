package cmd

import (
	"strconv"

	"github.com/lehigh-university-libraries/pustak/internal/browse"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/render"
	"github.com/lehigh-university-libraries/pustak/internal/review"
	"github.com/spf13/cobra"
)

func newBooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and review books",
	}

	var filters filterFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List active books",
		Example: `  pustak books list
  pustak books list --search hindi --genre fiction`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), a, browse.BookSource(a.client), filters.filter(),
				[]string{"ID", "TITLE", "AUTHOR", "CATEGORY", "GENRE", "RATING"}, bookRow)
		},
	}
	filters.register(list, true)

	var rf reviewFlags
	reviewCmd := &cobra.Command{
		Use:   "review ID",
		Short: "Add or update your review of a book",
		Example: `  pustak books review 12 --rating 4 --comment "A classic"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runReview(cmd, a, review.Books(a.client), id, rf)
		},
	}
	rf.register(reviewCmd)

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "filters",
			Short: "Show the category, author and genre values list filters accept",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFilters(cmd.Context(), a, browse.BookSource(a.client))
			},
		},
		&cobra.Command{
			Use:   "show ID",
			Short: "Show a book with its reviews",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return runShow(cmd.Context(), a, review.Books(a.client), id, (*render.Renderer).BookCard)
			},
		},
		reviewCmd,
		&cobra.Command{
			Use:   "unreview ID",
			Short: "Delete your review of a book",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return runUnreview(cmd.Context(), a, review.Books(a.client), id)
			},
		},
	)
	return cmd
}

func bookRow(b models.Book) []string {
	title := b.Title
	if b.IsPaid {
		title += " (paid)"
	}
	return []string{
		strconv.FormatInt(b.ID, 10), title, b.AuthorName, b.CategoryName,
		firstNonEmpty(b.GenreDisplay, b.Genre), ratingCell(b.AverageRating, b.ReviewCount),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
