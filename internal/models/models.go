package models

import "time"

// User is the identity the API returns on login, registration and profile edits.
// IsAdmin is asserted by the server and never set locally.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
	IsAdmin      bool   `json:"is_admin"`
}

// Book is a catalog entry with an optional readable file
type Book struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Author        *int64  `json:"author,omitempty"`
	AuthorName    string  `json:"author_name,omitempty"`
	Category      *int64  `json:"category,omitempty"`
	CategoryName  string  `json:"category_name,omitempty"`
	Genre         string  `json:"genre,omitempty"`
	GenreDisplay  string  `json:"genre_display,omitempty"`
	Language      string  `json:"language,omitempty"`
	PublishedYear int     `json:"published_year,omitempty"`
	CoverImageURL string  `json:"cover_image_url,omitempty"`
	ContentURL    string  `json:"content_url,omitempty"`
	FileType      string  `json:"file_type,omitempty"` // "pdf" or "epub"
	IsPaid        bool    `json:"is_paid"`
	Price         string  `json:"price,omitempty"`
	IsActive      bool    `json:"is_active"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

func (b Book) ItemTitle() string        { return b.Title }
func (b Book) ItemAuthorName() string   { return b.AuthorName }
func (b Book) ItemCategoryName() string { return b.CategoryName }
func (b Book) ItemAuthorID() *int64     { return b.Author }
func (b Book) ItemCategoryID() *int64   { return b.Category }
func (b Book) ItemGenre() string        { return b.Genre }

// Poem is a short text entry grouped by poem category
type Poem struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	Content            string  `json:"content"`
	Author             *int64  `json:"author,omitempty"`
	AuthorName         string  `json:"author_name,omitempty"`
	Category           *int64  `json:"category,omitempty"`
	CategoryName       string  `json:"category_name,omitempty"`
	Language           string  `json:"language,omitempty"`
	BackgroundImageURL string  `json:"background_image_url,omitempty"`
	AverageRating      float64 `json:"average_rating"`
	ReviewCount        int     `json:"review_count"`
}

func (p Poem) ItemTitle() string        { return p.Title }
func (p Poem) ItemAuthorName() string   { return p.AuthorName }
func (p Poem) ItemCategoryName() string { return p.CategoryName }
func (p Poem) ItemAuthorID() *int64     { return p.Author }
func (p Poem) ItemCategoryID() *int64   { return p.Category }
func (p Poem) ItemGenre() string        { return "" }

type Author struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Category is used for both book categories and poem categories
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Genre is a fixed choice served by the API as a value/label pair
type Genre struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Review is one user's rating of a book or poem. The API keeps at most one
// review per (item, user) pair.
type Review struct {
	ID        int64     `json:"id"`
	Item      int64     `json:"item,omitempty"`
	User      int64     `json:"user"`
	UserName  string    `json:"user_name,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Lookups holds the auxiliary collections that populate filters and form options.
type Lookups struct {
	Categories     []Category `json:"categories,omitempty"`
	PoemCategories []Category `json:"poem_categories,omitempty"`
	Authors        []Author   `json:"authors,omitempty"`
	Genres         []Genre    `json:"genres,omitempty"`
}

// Int64 returns a pointer to v, for optional foreign keys.
func Int64(v int64) *int64 { return &v }
