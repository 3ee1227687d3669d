package browse

import (
	"testing"

	"github.com/lehigh-university-libraries/pustak/internal/models"
	"github.com/stretchr/testify/assert"
)

func fixtureBooks() []models.Book {
	return []models.Book{
		{ID: 1, Title: "Hindi Tales", AuthorName: "Premchand", Author: models.Int64(10), CategoryName: "Fiction", Category: models.Int64(20), Genre: "fiction"},
		{ID: 2, Title: "Gitanjali", AuthorName: "Tagore", Author: models.Int64(11), CategoryName: "Poetry", Category: models.Int64(21), Genre: "poetry"},
		{ID: 3, Title: "Godan", AuthorName: "Premchand", Author: models.Int64(10), CategoryName: "Fiction", Category: models.Int64(20), Genre: "fiction"},
		{ID: 4, Title: "Untitled", Genre: "other"},
	}
}

func ids(books []models.Book) []int64 {
	out := make([]int64, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{name: "empty filter is identity", filter: Filter{}, want: []int64{1, 2, 3, 4}},
		{name: "whitespace text is identity", filter: Filter{Text: "   "}, want: []int64{1, 2, 3, 4}},
		{name: "case insensitive title", filter: Filter{Text: "HIND"}, want: []int64{1}},
		{name: "matches author name", filter: Filter{Text: "premchand"}, want: []int64{1, 3}},
		{name: "matches category name", filter: Filter{Text: "poet"}, want: []int64{2}},
		{name: "text is trimmed", filter: Filter{Text: "  godan "}, want: []int64{3}},
		{name: "author", filter: Filter{Author: models.Int64(10)}, want: []int64{1, 3}},
		{name: "category", filter: Filter{Category: models.Int64(21)}, want: []int64{2}},
		{name: "genre", filter: Filter{Genre: "other"}, want: []int64{4}},
		{name: "predicates are ANDed", filter: Filter{Author: models.Int64(10), Text: "godan"}, want: []int64{3}},
		{name: "no match", filter: Filter{Author: models.Int64(11), Genre: "fiction"}, want: []int64{}},
		{name: "unknown author id", filter: Filter{Author: models.Int64(99)}, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books := fixtureBooks()
			got := Apply(books, tt.filter)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, fixtureBooks(), books, "input must not be modified")
		})
	}
}

func TestApplyResultIsOrderedSubset(t *testing.T) {
	books := fixtureBooks()
	filters := []Filter{
		{Text: "e"},
		{Genre: "fiction"},
		{Category: models.Int64(20), Text: "tales"},
	}
	for _, f := range filters {
		got := Apply(books, f)
		assert.LessOrEqual(t, len(got), len(books))

		// Each result appears in the input after the previous one.
		pos := -1
		for _, b := range got {
			idx := -1
			for i := pos + 1; i < len(books); i++ {
				if books[i].ID == b.ID {
					idx = i
					break
				}
			}
			if !assert.NotEqual(t, -1, idx, "result %d out of order or missing from input", b.ID) {
				break
			}
			pos = idx
		}
	}
}

func TestApplyPoems(t *testing.T) {
	poems := []models.Poem{
		{ID: 1, Title: "Madhushala", AuthorName: "Bachchan", Category: models.Int64(5), CategoryName: "Hindi"},
		{ID: 2, Title: "Ode", AuthorName: "Keats", Category: models.Int64(6), CategoryName: "English"},
	}
	got := Apply(poems, Filter{Text: "hindi"})
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	assert.Empty(t, Apply(poems, Filter{Genre: "poetry"}), "poems carry no genre")
}

func TestActiveCount(t *testing.T) {
	assert.Zero(t, Filter{Text: "x"}.ActiveCount())
	assert.Equal(t, 3, Filter{Category: models.Int64(1), Author: models.Int64(2), Genre: "g"}.ActiveCount())
	assert.True(t, Filter{Text: " "}.Empty())
	assert.False(t, Filter{Genre: "g"}.Empty())
}
