// Package render formats catalog entities for the terminal.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/lehigh-university-libraries/pustak/internal/models"
)

var (
	Primary     = lipgloss.Color("#F59E0B")
	Muted       = lipgloss.Color("#9CA3AF")
	Success     = lipgloss.Color("#10B981")
	Destructive = lipgloss.Color("#EF4444")
	Border      = lipgloss.Color("#374151")
)

type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Stars   lipgloss.Style
	Paid    lipgloss.Style
	Off     lipgloss.Style
	Card    lipgloss.Style
	Mine    lipgloss.Style
	Header  lipgloss.Style
	Error   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Heading: lipgloss.NewStyle().Bold(true).MarginTop(1),
		Label:   lipgloss.NewStyle().Foreground(Muted),
		Muted:   lipgloss.NewStyle().Foreground(Muted),
		Stars:   lipgloss.NewStyle().Foreground(Primary),
		Paid:    lipgloss.NewStyle().Bold(true).Foreground(Success),
		Off:     lipgloss.NewStyle().Bold(true).Foreground(Destructive),
		Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1),
		Mine:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Primary).Padding(0, 1),
		Header:  lipgloss.NewStyle().Bold(true).Underline(true),
		Error:   lipgloss.NewStyle().Foreground(Destructive),
	}
}

// Stars draws a five star bar, rounding rating to the nearest whole star.
func Stars(rating float64) string {
	n := int(math.Round(rating))
	n = max(0, min(5, n))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// Renderer renders markdown bodies with glamour and everything else with lipgloss.
type Renderer struct {
	styles Styles
	md     *glamour.TermRenderer
}

// New returns a renderer that wraps markdown at width. Plain disables styling
// of markdown, for piped output.
func New(width int, plain bool) (*Renderer, error) {
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStylePath("notty")
	}
	md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Renderer{styles: DefaultStyles(), md: md}, nil
}

func (r *Renderer) Styles() Styles { return r.styles }

// Markdown renders s, falling back to the raw text if glamour fails.
func (r *Renderer) Markdown(s string) string {
	out, err := r.md.Render(s)
	if err != nil {
		return s
	}
	return strings.TrimRight(out, "\n")
}

func (r *Renderer) rating(avg float64, count int) string {
	if count == 0 {
		return r.styles.Muted.Render("No reviews yet")
	}
	return fmt.Sprintf("%s %.1f (%d reviews)", r.styles.Stars.Render(Stars(avg)), avg, count)
}

func (r *Renderer) BookCard(b models.Book) string {
	var sb strings.Builder
	sb.WriteString(r.styles.Title.Render(b.Title))
	if b.IsPaid {
		sb.WriteString(" " + r.styles.Paid.Render("Paid"))
	}
	if !b.IsActive {
		sb.WriteString(" " + r.styles.Off.Render("Inactive"))
	}
	sb.WriteString("\n")
	r.field(&sb, "Author", b.AuthorName)
	r.field(&sb, "Category", b.CategoryName)
	r.field(&sb, "Genre", firstNonEmpty(b.GenreDisplay, b.Genre))
	r.field(&sb, "Language", b.Language)
	if b.PublishedYear != 0 {
		r.field(&sb, "Published", fmt.Sprint(b.PublishedYear))
	}
	if b.IsPaid && b.Price != "" {
		r.field(&sb, "Price", "₹"+b.Price)
	}
	r.field(&sb, "File", b.ContentURL)
	sb.WriteString(r.rating(b.AverageRating, b.ReviewCount))
	if b.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(r.styles.Heading.Render("About this book"))
		sb.WriteString("\n")
		sb.WriteString(r.Markdown(b.Description))
	}
	return sb.String()
}

func (r *Renderer) PoemCard(p models.Poem) string {
	var sb strings.Builder
	sb.WriteString(r.styles.Title.Render(p.Title))
	sb.WriteString("\n")
	r.field(&sb, "Author", p.AuthorName)
	r.field(&sb, "Category", p.CategoryName)
	r.field(&sb, "Language", p.Language)
	sb.WriteString(r.rating(p.AverageRating, p.ReviewCount))
	if p.Content != "" {
		sb.WriteString("\n\n")
		sb.WriteString(r.Markdown(p.Content))
	}
	return sb.String()
}

// Reviews lists reviews with the user's own review boxed first.
func (r *Renderer) Reviews(reviews []models.Review, mine *models.Review) string {
	var sb strings.Builder
	sb.WriteString(r.styles.Heading.Render("Reviews & Ratings"))
	sb.WriteString("\n")
	if mine != nil {
		sb.WriteString(r.styles.Mine.Render("Your Review\n" + r.review(*mine)))
		sb.WriteString("\n")
	}
	others := 0
	for _, rv := range reviews {
		if mine != nil && rv.User == mine.User {
			continue
		}
		others++
		sb.WriteString(r.styles.Card.Render(r.review(rv)))
		sb.WriteString("\n")
	}
	if others == 0 && mine == nil {
		sb.WriteString(r.styles.Muted.Render("No reviews yet. Be the first to review!"))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (r *Renderer) review(rv models.Review) string {
	head := fmt.Sprintf("%s %s", r.styles.Stars.Render(Stars(float64(rv.Rating))), rv.UserName)
	if !rv.CreatedAt.IsZero() {
		head += " " + r.styles.Muted.Render(rv.CreatedAt.Format("Jan 2, 2006"))
	}
	if rv.Comment == "" {
		return head
	}
	return head + "\n" + rv.Comment
}

// Table renders rows under headers with padded columns.
func (r *Renderer) Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var sb strings.Builder
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = r.styles.Header.Render(pad(h, widths[i]))
	}
	sb.WriteString(strings.Join(cells, "  "))
	for _, row := range rows {
		sb.WriteString("\n")
		for i := range cells {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = pad(cell, widths[i])
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return sb.String()
}

func (r *Renderer) field(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(r.styles.Label.Render(label+": ") + value + "\n")
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
