package cmd

import (
	"strconv"

	"github.com/lehigh-university-libraries/pustak/internal/browse"
	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/lehigh-university-libraries/pustak/internal/render"
	"github.com/lehigh-university-libraries/pustak/internal/review"
	"github.com/spf13/cobra"
)

func newPoemsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poems",
		Short: "Read and review poems",
	}

	var filters filterFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List poems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), a, browse.PoemSource(a.client), filters.filter(),
				[]string{"ID", "TITLE", "AUTHOR", "CATEGORY", "RATING"}, poemRow)
		},
	}
	filters.register(list, false)

	var rf reviewFlags
	reviewCmd := &cobra.Command{
		Use:   "review ID",
		Short: "Add or update your review of a poem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runReview(cmd, a, review.Poems(a.client), id, rf)
		},
	}
	rf.register(reviewCmd)

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "filters",
			Short: "Show the poem categories list filters accept",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFilters(cmd.Context(), a, browse.PoemSource(a.client))
			},
		},
		&cobra.Command{
			Use:   "show ID",
			Short: "Read a poem with its reviews",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return runShow(cmd.Context(), a, review.Poems(a.client), id, (*render.Renderer).PoemCard)
			},
		},
		reviewCmd,
		&cobra.Command{
			Use:   "unreview ID",
			Short: "Delete your review of a poem",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return runUnreview(cmd.Context(), a, review.Poems(a.client), id)
			},
		},
	)
	return cmd
}

func poemRow(p models.Poem) []string {
	return []string{
		strconv.FormatInt(p.ID, 10), p.Title, p.AuthorName, p.CategoryName,
		ratingCell(p.AverageRating, p.ReviewCount),
	}
}
