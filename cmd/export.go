package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/pustak/internal/browse"
	"github.com/lehigh-university-libraries/pustak/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format  string
		output  string
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "export books|poems",
		Short: "Write the filtered catalog listing as json, csv, yaml or parquet",
		Example: `  pustak export books --format csv --genre fiction
  pustak export poems --format parquet --output poems.parquet`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"books", "poems"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.Parquet && output == "" {
				return fmt.Errorf("parquet output needs --output")
			}

			var w io.Writer = a.out
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}

			ctx := cmd.Context()
			var n int
			switch strings.ToLower(args[0]) {
			case "books":
				books, _, _, err := loadFiltered(ctx, browse.BookSource(a.client), filters.filter())
				if err != nil {
					return err
				}
				n = len(books)
				if err := export.Write(w, f, export.Books(books)); err != nil {
					return err
				}
			case "poems":
				poems, _, _, err := loadFiltered(ctx, browse.PoemSource(a.client), filters.filter())
				if err != nil {
					return err
				}
				n = len(poems)
				if err := export.Write(w, f, export.Poems(poems)); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown collection %q", args[0])
			}

			slog.Info("Exported catalog", "collection", args[0], "format", f, "rows", n, "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, csv, yaml or parquet")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	filters.register(cmd, true)
	return cmd
}
