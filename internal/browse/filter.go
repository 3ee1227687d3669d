package browse

import "strings"

// Item is a catalog entry that can be narrowed by the list filters.
type Item interface {
	ItemTitle() string
	ItemAuthorName() string
	ItemCategoryName() string
	ItemAuthorID() *int64
	ItemCategoryID() *int64
	ItemGenre() string
}

// Filter is the transient per-page filter state. Zero values are unset.
type Filter struct {
	Category *int64
	Author   *int64
	Genre    string
	Text     string
}

func (f Filter) Empty() bool {
	return f.Category == nil && f.Author == nil && f.Genre == "" && strings.TrimSpace(f.Text) == ""
}

// ActiveCount counts the dropdown filters in use; free text is not counted.
func (f Filter) ActiveCount() int {
	n := 0
	if f.Category != nil {
		n++
	}
	if f.Author != nil {
		n++
	}
	if f.Genre != "" {
		n++
	}
	return n
}

// Match reports whether it passes every set predicate.
func (f Filter) Match(it Item) bool {
	if f.Category != nil && !sameID(it.ItemCategoryID(), *f.Category) {
		return false
	}
	if f.Author != nil && !sameID(it.ItemAuthorID(), *f.Author) {
		return false
	}
	if f.Genre != "" && it.ItemGenre() != f.Genre {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Text)); q != "" {
		return strings.Contains(strings.ToLower(it.ItemTitle()), q) ||
			strings.Contains(strings.ToLower(it.ItemAuthorName()), q) ||
			strings.Contains(strings.ToLower(it.ItemCategoryName()), q)
	}
	return true
}

func sameID(got *int64, want int64) bool {
	return got != nil && *got == want
}

// Apply returns the items matching f in load order. items is not modified.
func Apply[T Item](items []T, f Filter) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
