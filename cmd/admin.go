package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/pustak/internal/admin"
	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/confirm"
	"github.com/lehigh-university-libraries/pustak/internal/profile"
	"github.com/spf13/cobra"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage books, authors and poems (admins only)",
	}

	cmd.AddCommand(
		newAdminStatsCmd(a),
		newAdminListCmd(a),
		newAddBookCmd(a),
		newAddAuthorCmd(a),
		newAddPoemCmd(a),
		newToggleBookCmd(a),
		newAdminDeleteCmd(a),
		newUploadCmd(a),
	)
	return cmd
}

// adminController checks the role and loads the panel.
func adminController(ctx context.Context, a *app) (*admin.Controller, error) {
	if _, err := a.requireAdmin(); err != nil {
		return nil, err
	}
	c := admin.New(a.client, a.session)
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// reportMutation prints the outcome of a write. A failed refresh is a
// warning since the write itself went through.
func reportMutation(a *app, err error, done string) error {
	switch {
	case err == nil:
		a.println(done)
		return nil
	case errors.Is(err, confirm.ErrDeclined):
		a.println("Cancelled")
		return nil
	case errors.Is(err, apperr.ErrRefreshFailed):
		slog.Warn("Change applied but the listing could not be refreshed", "error", err)
		a.println(done)
		return nil
	default:
		return err
	}
}

func newAdminStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := adminController(cmd.Context(), a)
			if err != nil {
				return err
			}
			r, err := a.renderer()
			if err != nil {
				return err
			}
			st := c.Stats()
			a.println(r.Table([]string{"COLLECTION", "TOTAL"}, [][]string{
				{"Books", strconv.Itoa(st.Books)},
				{"  active", strconv.Itoa(st.ActiveBooks)},
				{"  inactive", strconv.Itoa(st.InactiveBooks)},
				{"Authors", strconv.Itoa(st.Authors)},
				{"Poems", strconv.Itoa(st.Poems)},
			}))
			return nil
		},
	}
}

func newAdminListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "list books|authors|poems",
		Short:     "List a managed collection, inactive books included",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"books", "authors", "poems"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := admin.ParseKind(args[0])
			if err != nil {
				return err
			}
			c, err := adminController(cmd.Context(), a)
			if err != nil {
				return err
			}
			r, err := a.renderer()
			if err != nil {
				return err
			}

			snap := c.Snapshot()
			var rows [][]string
			var headers []string
			switch kind {
			case admin.Book:
				headers = []string{"ID", "TITLE", "AUTHOR", "ACTIVE", "PAID"}
				for _, b := range snap.Books {
					rows = append(rows, []string{strconv.FormatInt(b.ID, 10), b.Title, b.AuthorName, yesNo(b.IsActive), yesNo(b.IsPaid)})
				}
			case admin.Author:
				headers = []string{"ID", "NAME"}
				for _, au := range snap.Authors {
					rows = append(rows, []string{strconv.FormatInt(au.ID, 10), au.Name})
				}
			case admin.Poem:
				headers = []string{"ID", "TITLE", "AUTHOR", "CATEGORY"}
				for _, p := range snap.Poems {
					rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Title, p.AuthorName, p.CategoryName})
				}
			}
			if len(rows) == 0 {
				a.println("Nothing here yet")
				return nil
			}
			a.println(r.Table(headers, rows))
			return nil
		},
	}
}

func newAddBookCmd(a *app) *cobra.Command {
	var (
		in        api.BookInput
		author    int64
		category  int64
		coverFile string
		bookFile  string
	)

	cmd := &cobra.Command{
		Use:   "add-book",
		Short: "Add a book, uploading its cover and file",
		Example: `  pustak admin add-book --title Godan --author 3 --category 1 --genre fiction \
    --cover godan.jpg --file godan.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := adminController(ctx, a)
			if err != nil {
				return err
			}
			in.Author = optionalID(author)
			in.Category = optionalID(category)
			if in.Title == "" {
				return apperr.Invalid("title", "Title is required")
			}
			if coverFile != "" {
				if in.CoverImageURL, err = uploadFile(ctx, a, api.UploadImage, coverFile); err != nil {
					return err
				}
			}
			if bookFile != "" {
				if in.FileType, err = documentType(bookFile); err != nil {
					return err
				}
				if in.ContentURL, err = uploadFile(ctx, a, api.UploadDocument, bookFile); err != nil {
					return err
				}
			}
			return reportMutation(a, c.Create(ctx, admin.Book, in), "Book added")
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "Title (required)")
	f.StringVar(&in.Description, "description", "", "Description, markdown allowed")
	f.Int64Var(&author, "author", 0, "Author id")
	f.Int64Var(&category, "category", 0, "Category id")
	f.StringVar(&in.Genre, "genre", "", "Genre value")
	f.StringVar(&in.Language, "language", "Hindi", "Language")
	f.IntVar(&in.PublishedYear, "year", 0, "Year published")
	f.BoolVar(&in.IsPaid, "paid", false, "Paid book")
	f.StringVar(&in.Price, "price", "", "Price of a paid book")
	f.StringVar(&coverFile, "cover", "", "Cover image file to upload")
	f.StringVar(&bookFile, "file", "", "PDF or EPUB file to upload")
	return cmd
}

func newAddAuthorCmd(a *app) *cobra.Command {
	var (
		in    api.AuthorInput
		photo string
	)

	cmd := &cobra.Command{
		Use:   "add-author",
		Short: "Add an author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := adminController(ctx, a)
			if err != nil {
				return err
			}
			if in.Name == "" {
				return apperr.Invalid("name", "Name is required")
			}
			if photo != "" {
				if in.PhotoURL, err = uploadFile(ctx, a, api.UploadImage, photo); err != nil {
					return err
				}
			}
			return reportMutation(a, c.Create(ctx, admin.Author, in), "Author added")
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Name (required)")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "Short biography")
	cmd.Flags().StringVar(&photo, "photo", "", "Photo file to upload")
	return cmd
}

func newAddPoemCmd(a *app) *cobra.Command {
	var (
		in          api.PoemInput
		author      int64
		category    int64
		contentFile string
		background  string
	)

	cmd := &cobra.Command{
		Use:   "add-poem",
		Short: "Add a poem",
		Example: `  pustak admin add-poem --title Madhushala --content-file madhushala.md --category 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := adminController(ctx, a)
			if err != nil {
				return err
			}
			in.Author = optionalID(author)
			in.Category = optionalID(category)
			if contentFile != "" {
				raw, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content: %w", err)
				}
				in.Content = string(raw)
			}
			if background != "" {
				if in.BackgroundImageURL, err = uploadFile(ctx, a, api.UploadImage, background); err != nil {
					return err
				}
			}
			return reportMutation(a, c.Create(ctx, admin.Poem, in), "Poem added")
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "Title (required)")
	f.StringVar(&in.Content, "content", "", "Poem text")
	f.StringVar(&contentFile, "content-file", "", "Read the poem text from this file")
	f.Int64Var(&author, "author", 0, "Author id")
	f.Int64Var(&category, "category", 0, "Poem category id")
	f.StringVar(&in.Language, "language", "Hindi", "Language")
	f.StringVar(&background, "background", "", "Background image file to upload")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file")
	return cmd
}

func newToggleBookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-book ID",
		Short: "Activate or deactivate a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c, err := adminController(ctx, a)
			if err != nil {
				return err
			}
			b, ok := c.FindBook(id)
			if !ok {
				return &apperr.NotFoundError{Resource: "book", ID: id}
			}

			p := c.RequestToggleActive(id, b.IsActive)
			done := "Book activated"
			if b.IsActive {
				done = "Book deactivated"
			}
			return reportMutation(a, a.confirm(ctx, p), done)
		},
	}
}

func newAdminDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "delete book|author|poem ID",
		Short:     "Permanently delete a book, author or poem",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"book", "author", "poem"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := admin.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c, err := adminController(ctx, a)
			if err != nil {
				return err
			}
			p, err := c.RequestDelete(kind, id)
			if err != nil {
				return err
			}
			title := string(kind)
			return reportMutation(a, a.confirm(ctx, p), strings.ToUpper(title[:1])+title[1:]+" deleted")
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an image or document and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAdmin(); err != nil {
				return err
			}
			k := api.UploadKind(kind)
			if k != api.UploadImage && k != api.UploadDocument {
				return apperr.Invalid("kind", "kind must be image or document")
			}
			if k == api.UploadDocument {
				if _, err := documentType(args[0]); err != nil {
					return err
				}
			}
			url, err := uploadFile(cmd.Context(), a, k, args[0])
			if err != nil {
				return err
			}
			a.println(url)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(api.UploadImage), "image or document")
	return cmd
}

func uploadFile(ctx context.Context, a *app, kind api.UploadKind, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if kind == api.UploadImage {
		if r, err = profile.RequireImage(f); err != nil {
			return "", err
		}
	}
	res, err := a.client.Upload(ctx, kind, filepath.Base(path), r)
	if err != nil {
		return "", err
	}
	slog.Info("Uploaded file", "path", path, "kind", kind, "url", res.URL)
	return res.URL, nil
}

// documentType maps a book file to the file_type the API expects.
func documentType(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf", ".epub":
		return ext[1:], nil
	}
	return "", apperr.Invalid("file", "Book file must be a PDF or EPUB")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
