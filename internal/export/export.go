// Package export writes catalog listings as json, csv, yaml or parquet.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	JSON    Format = "json"
	CSV     Format = "csv"
	YAML    Format = "yaml"
	Parquet Format = "parquet"
)

var Formats = []Format{JSON, CSV, YAML, Parquet}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return YAML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Record is one flat exported row.
type Record interface {
	BookRecord | PoemRecord
	header() []string
	row() []string
}

type BookRecord struct {
	ID            int64   `json:"id" yaml:"id" parquet:"id"`
	Title         string  `json:"title" yaml:"title" parquet:"title"`
	Author        string  `json:"author" yaml:"author" parquet:"author"`
	Category      string  `json:"category" yaml:"category" parquet:"category"`
	Genre         string  `json:"genre" yaml:"genre" parquet:"genre"`
	Language      string  `json:"language" yaml:"language" parquet:"language"`
	PublishedYear int64   `json:"published_year" yaml:"published_year" parquet:"published_year"`
	IsPaid        bool    `json:"is_paid" yaml:"is_paid" parquet:"is_paid"`
	Price         string  `json:"price" yaml:"price" parquet:"price"`
	IsActive      bool    `json:"is_active" yaml:"is_active" parquet:"is_active"`
	AverageRating float64 `json:"average_rating" yaml:"average_rating" parquet:"average_rating"`
	ReviewCount   int64   `json:"review_count" yaml:"review_count" parquet:"review_count"`
}

func (BookRecord) header() []string {
	return []string{"id", "title", "author", "category", "genre", "language", "published_year", "is_paid", "price", "is_active", "average_rating", "review_count"}
}

func (r BookRecord) row() []string {
	return []string{
		strconv.FormatInt(r.ID, 10), r.Title, r.Author, r.Category, r.Genre, r.Language,
		strconv.FormatInt(r.PublishedYear, 10), strconv.FormatBool(r.IsPaid), r.Price,
		strconv.FormatBool(r.IsActive), strconv.FormatFloat(r.AverageRating, 'f', 1, 64),
		strconv.FormatInt(r.ReviewCount, 10),
	}
}

type PoemRecord struct {
	ID            int64   `json:"id" yaml:"id" parquet:"id"`
	Title         string  `json:"title" yaml:"title" parquet:"title"`
	Author        string  `json:"author" yaml:"author" parquet:"author"`
	Category      string  `json:"category" yaml:"category" parquet:"category"`
	Language      string  `json:"language" yaml:"language" parquet:"language"`
	Content       string  `json:"content" yaml:"content" parquet:"content"`
	AverageRating float64 `json:"average_rating" yaml:"average_rating" parquet:"average_rating"`
	ReviewCount   int64   `json:"review_count" yaml:"review_count" parquet:"review_count"`
}

func (PoemRecord) header() []string {
	return []string{"id", "title", "author", "category", "language", "content", "average_rating", "review_count"}
}

func (r PoemRecord) row() []string {
	return []string{
		strconv.FormatInt(r.ID, 10), r.Title, r.Author, r.Category, r.Language, r.Content,
		strconv.FormatFloat(r.AverageRating, 'f', 1, 64), strconv.FormatInt(r.ReviewCount, 10),
	}
}

func Books(books []models.Book) []BookRecord {
	out := make([]BookRecord, 0, len(books))
	for _, b := range books {
		out = append(out, BookRecord{
			ID: b.ID, Title: b.Title, Author: b.AuthorName, Category: b.CategoryName,
			Genre: b.Genre, Language: b.Language, PublishedYear: int64(b.PublishedYear),
			IsPaid: b.IsPaid, Price: b.Price, IsActive: b.IsActive,
			AverageRating: b.AverageRating, ReviewCount: int64(b.ReviewCount),
		})
	}
	return out
}

func Poems(poems []models.Poem) []PoemRecord {
	out := make([]PoemRecord, 0, len(poems))
	for _, p := range poems {
		out = append(out, PoemRecord{
			ID: p.ID, Title: p.Title, Author: p.AuthorName, Category: p.CategoryName,
			Language: p.Language, Content: p.Content,
			AverageRating: p.AverageRating, ReviewCount: int64(p.ReviewCount),
		})
	}
	return out
}

// Write encodes rows to w in format f.
func Write[T Record](w io.Writer, f Format, rows []T) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []T{}
		}
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
	case CSV:
		cw := csv.NewWriter(w)
		var zero T
		if err := cw.Write(zero.header()); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		for _, r := range rows {
			if err := cw.Write(r.row()); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	case Parquet:
		pw := parquet.NewGenericWriter[T](w)
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("failed to close parquet writer: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
	return nil
}
