// Package apitest runs an in-memory catalog backend behind httptest so the
// controllers can be exercised end to end without a real API.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/lehigh-university-libraries/pustak/internal/api"
	"github.com/lehigh-university-libraries/pustak/internal/config"
	"github.com/lehigh-university-libraries/pustak/internal/models"
)

// OTP is the one-time password every reset request receives.
const OTP = "123456"

type account struct {
	user     models.User
	password string
}

type Server struct {
	*httptest.Server

	mu             sync.Mutex
	nextID         int64
	users          map[int64]*account
	books          []models.Book
	authors        []models.Author
	poems          []models.Poem
	categories     []models.Category
	poemCategories []models.Category
	genres         []models.Genre
	reviews        map[api.Kind]map[int64][]models.Review
	otps           map[string]string
	verified       map[string]bool

	failures map[string]int
	after    map[string]int
	calls    map[string]int
	holds    map[string]chan struct{}
	holdNext map[string]bool
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	s := &Server{
		nextID:   100,
		users:    map[int64]*account{},
		reviews:  map[api.Kind]map[int64][]models.Review{api.Books: {}, api.Poems: {}},
		otps:     map[string]string{},
		verified: map[string]bool{},
		failures: map[string]int{},
		after:    map[string]int{},
		calls:    map[string]int{},
		holds:    map[string]chan struct{}{},
		holdNext: map[string]bool{},
	}

	router := httprouter.New()
	s.register(router)
	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Close)
	return s
}

// Client returns an API client pointed at the server.
func (s *Server) Client() *api.Client {
	return api.New(config.API{BaseURL: s.URL, Timeout: 5 * time.Second}, api.WithHTTPClient(s.Server.Client()))
}

func (s *Server) register(router *httprouter.Router) {
	s.route(router, "POST", "/login", s.login)
	s.route(router, "POST", "/register", s.registerUser)
	s.route(router, "POST", "/forgot-password/send-otp", s.sendOTP)
	s.route(router, "POST", "/forgot-password/verify-otp", s.verifyOTP)
	s.route(router, "POST", "/forgot-password/reset", s.resetPassword)

	s.route(router, "GET", "/books", s.listBooks)
	s.route(router, "POST", "/books", s.createBook)
	s.route(router, "GET", "/books/:id", s.getBook)
	s.route(router, "PUT", "/books/:id", s.updateBook)
	s.route(router, "DELETE", "/books/:id", s.deleteBook)

	s.route(router, "GET", "/authors", s.listAuthors)
	s.route(router, "POST", "/authors", s.createAuthor)
	s.route(router, "DELETE", "/authors/:id", s.deleteAuthor)

	s.route(router, "GET", "/poems", s.listPoems)
	s.route(router, "POST", "/poems", s.createPoem)
	s.route(router, "DELETE", "/poems/:id", s.deletePoem)

	s.route(router, "GET", "/categories", s.listCategories)
	s.route(router, "GET", "/poem-categories", s.listPoemCategories)
	s.route(router, "GET", "/genres", s.listGenres)

	for _, kind := range []api.Kind{api.Books, api.Poems} {
		s.route(router, "GET", "/"+string(kind)+"/:id/reviews", s.listReviews(kind))
		s.route(router, "POST", "/"+string(kind)+"/:id/reviews", s.upsertReview(kind))
		s.route(router, "DELETE", "/"+string(kind)+"/:id/reviews/user", s.deleteReview(kind))
	}

	s.route(router, "PUT", "/profile/:id", s.updateProfile)
	s.route(router, "POST", "/upload", s.upload)
}

// route records every call and applies injected failures and holds.
func (s *Server) route(router *httprouter.Router, method, pattern string, h httprouter.Handle) {
	key := method + " " + pattern
	router.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		s.mu.Lock()
		s.calls[key]++
		status, failing := s.failures[key]
		if n, ok := s.after[key]; ok && s.calls[key] <= n {
			failing = false
		}
		hold := s.holds[key]
		if hold != nil && s.holdNext[key] {
			delete(s.holds, key)
			delete(s.holdNext, key)
		}
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeError(w, status, "injected failure")
			return
		}
		h(w, r, ps)
	})
}

// Fail makes every request to route (e.g. "GET /genres") answer with status.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
	delete(s.after, route)
}

// FailAfter lets the next n requests to route through and fails the rest
// with status.
func (s *Server) FailAfter(route string, n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
	s.after[route] = s.calls[route] + n
}

// Recover clears an injected failure.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
	delete(s.after, route)
}

// Hold blocks requests to route until the returned release func is called.
func (s *Server) Hold(route string) (release func()) {
	return s.hold(route, false)
}

// HoldNext blocks only the next request to route. Later requests pass.
func (s *Server) HoldNext(route string) (release func()) {
	return s.hold(route, true)
}

func (s *Server) hold(route string, once bool) func() {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = ch
	s.holdNext[route] = once
	s.mu.Unlock()

	var done sync.Once
	return func() {
		done.Do(func() {
			s.mu.Lock()
			if s.holds[route] == ch {
				delete(s.holds, route)
				delete(s.holdNext, route)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls reports how many requests route has received.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// Seeding

func (s *Server) AddUser(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	s.users[u.ID] = &account{user: u, password: password}
	return u
}

func (s *Server) AddBook(b models.Book) models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	s.books = append(s.books, b)
	return b
}

func (s *Server) AddAuthor(a models.Author) models.Author {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.id()
	}
	s.authors = append(s.authors, a)
	return a
}

func (s *Server) AddPoem(p models.Poem) models.Poem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.poems = append(s.poems, p)
	return p
}

func (s *Server) AddCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.categories = append(s.categories, c)
	return c
}

func (s *Server) AddPoemCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.poemCategories = append(s.poemCategories, c)
	return c
}

func (s *Server) AddGenre(g models.Genre) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genres = append(s.genres, g)
}

// Inspection

func (s *Server) Books() []models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Book(nil), s.books...)
}

func (s *Server) Authors() []models.Author {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Author(nil), s.authors...)
}

func (s *Server) Poems() []models.Poem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Poem(nil), s.poems...)
}

func (s *Server) Reviews(kind api.Kind, itemID int64) []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Review(nil), s.reviews[kind][itemID]...)
}

func (s *Server) Password(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.users[userID]; ok {
		return a.password
	}
	return ""
}

// Handlers

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req api.Credentials
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.users {
		if a.user.Email == req.Email && a.password == req.Password {
			writeJSON(w, http.StatusOK, a.user)
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid credentials")
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req api.Registration
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.users {
		if a.user.Email == req.Email {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		if a.user.Username == req.Username {
			writeError(w, http.StatusBadRequest, "Username already taken")
			return
		}
	}
	u := models.User{ID: s.id(), Username: req.Username, Email: req.Email}
	s.users[u.ID] = &account{user: u, password: req.Password}
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (s *Server) accountByEmail(email string) *account {
	for _, a := range s.users {
		if a.user.Email == email {
			return a
		}
	}
	return nil
}

func (s *Server) sendOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByEmail(req.Email) == nil {
		writeError(w, http.StatusNotFound, "No account with that email")
		return
	}
	s.otps[req.Email] = OTP
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if want, ok := s.otps[req.Email]; !ok || want != req.OTP {
		writeError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	s.verified[req.Email] = true
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP verified"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.verified[req.Email] || s.otps[req.Email] != req.OTP {
		writeError(w, http.StatusBadRequest, "OTP not verified")
		return
	}
	a := s.accountByEmail(req.Email)
	if a == nil {
		writeError(w, http.StatusNotFound, "No account with that email")
		return
	}
	a.password = req.NewPassword
	delete(s.otps, req.Email)
	delete(s.verified, req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset"})
}

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	showAll := r.URL.Query().Get("show_all") == "true"
	s.mu.Lock()
	defer s.mu.Unlock()
	books := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		if b.IsActive || showAll {
			books = append(books, b)
		}
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) getBook(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	id, ok := paramID(w, ps)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.ID == id {
			writeJSON(w, http.StatusOK, b)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Book not found")
}

func (s *Server) admin(userID int64) bool {
	a, ok := s.users[userID]
	return ok && a.user.IsAdmin
}

func (s *Server) createBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		api.BookInput
		UserID int64 `json:"user_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.admin(req.UserID) {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	b := models.Book{
		ID: s.id(), Title: req.Title, Description: req.Description, Author: req.Author,
		Category: req.Category, Genre: req.Genre, CoverImageURL: req.CoverImageURL,
		ContentURL: req.ContentURL, FileType: req.FileType, Language: req.Language,
		IsPaid: req.IsPaid, Price: req.Price, PublishedYear: req.PublishedYear, IsActive: true,
	}
	b.AuthorName = s.authorName(b.Author)
	b.CategoryName = categoryName(s.categories, b.Category)
	s.books = append(s.books, b)
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) updateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := paramID(w, ps)
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active"`
		UserID   int64 `json:"user_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.admin(req.UserID) {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}
	for i := range s.books {
		if s.books[i].ID == id {
			if req.IsActive != nil {
				s.books[i].IsActive = *req.IsActive
			}
			writeJSON(w, http.StatusOK, s.books[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Book not found")
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.deleteFrom(w, r, ps, func(id int64) bool {
		for i, b := range s.books {
			if b.ID == id {
				s.books = append(s.books[:i], s.books[i+1:]...)
				delete(s.reviews[api.Books], id)
				return true
			}
		}
		return false
	})
}

func (s *Server) listAuthors(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.authors))
}

func (s *Server) createAuthor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		api.AuthorInput
		UserID int64 `json:"user_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.admin(req.UserID) {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	a := models.Author{ID: s.id(), Name: req.Name, Bio: req.Bio, PhotoURL: req.PhotoURL}
	s.authors = append(s.authors, a)
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) deleteAuthor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.deleteFrom(w, r, ps, func(id int64) bool {
		for i, a := range s.authors {
			if a.ID == id {
				s.authors = append(s.authors[:i], s.authors[i+1:]...)
				return true
			}
		}
		return false
	})
}

func (s *Server) listPoems(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.poems))
}

func (s *Server) createPoem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		api.PoemInput
		UserID int64 `json:"user_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.admin(req.UserID) {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	p := models.Poem{
		ID: s.id(), Title: req.Title, Content: req.Content, Author: req.Author,
		Category: req.Category, Language: req.Language, BackgroundImageURL: req.BackgroundImageURL,
	}
	p.AuthorName = s.authorName(p.Author)
	p.CategoryName = categoryName(s.poemCategories, p.Category)
	s.poems = append(s.poems, p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) deletePoem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.deleteFrom(w, r, ps, func(id int64) bool {
		for i, p := range s.poems {
			if p.ID == id {
				s.poems = append(s.poems[:i], s.poems[i+1:]...)
				delete(s.reviews[api.Poems], id)
				return true
			}
		}
		return false
	})
}

func (s *Server) deleteFrom(w http.ResponseWriter, r *http.Request, ps httprouter.Params, remove func(id int64) bool) {
	id, ok := paramID(w, ps)
	if !ok {
		return
	}
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.admin(req.UserID) {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}
	if !remove(id) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.categories))
}

func (s *Server) listPoemCategories(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.poemCategories))
}

func (s *Server) listGenres(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(s.genres))
}

func (s *Server) itemExists(kind api.Kind, id int64) bool {
	if kind == api.Books {
		for _, b := range s.books {
			if b.ID == id {
				return true
			}
		}
		return false
	}
	for _, p := range s.poems {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) listReviews(kind api.Kind) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
		id, ok := paramID(w, ps)
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.itemExists(kind, id) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSON(w, http.StatusOK, nonNil(s.reviews[kind][id]))
	}
}

func (s *Server) upsertReview(kind api.Kind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := paramID(w, ps)
		if !ok {
			return
		}
		var req struct {
			UserID  int64  `json:"user_id"`
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if !decode(w, r, &req) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.itemExists(kind, id) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
			return
		}
		a, ok := s.users[req.UserID]
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown user")
			return
		}

		reviews := s.reviews[kind][id]
		status := http.StatusCreated
		var saved models.Review
		updated := false
		for i := range reviews {
			if reviews[i].User == req.UserID {
				reviews[i].Rating = req.Rating
				reviews[i].Comment = req.Comment
				saved = reviews[i]
				status = http.StatusOK
				updated = true
				break
			}
		}
		if !updated {
			saved = models.Review{
				ID: s.id(), Item: id, User: req.UserID, UserName: a.user.Username,
				Rating: req.Rating, Comment: req.Comment, CreatedAt: time.Now().UTC(),
			}
			reviews = append(reviews, saved)
		}
		s.reviews[kind][id] = reviews
		s.recompute(kind, id)
		writeJSON(w, status, saved)
	}
}

func (s *Server) deleteReview(kind api.Kind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := paramID(w, ps)
		if !ok {
			return
		}
		var req struct {
			UserID int64 `json:"user_id"`
		}
		if !decode(w, r, &req) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		reviews := s.reviews[kind][id]
		for i := range reviews {
			if reviews[i].User == req.UserID {
				s.reviews[kind][id] = append(reviews[:i], reviews[i+1:]...)
				s.recompute(kind, id)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeError(w, http.StatusNotFound, "Review not found")
	}
}

// recompute refreshes the server-owned aggregates of an item.
func (s *Server) recompute(kind api.Kind, id int64) {
	reviews := s.reviews[kind][id]
	avg := 0.0
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		avg = math.Round(float64(total)/float64(len(reviews))*10) / 10
	}
	if kind == api.Books {
		for i := range s.books {
			if s.books[i].ID == id {
				s.books[i].AverageRating = avg
				s.books[i].ReviewCount = len(reviews)
			}
		}
		return
	}
	for i := range s.poems {
		if s.poems[i].ID == id {
			s.poems[i].AverageRating = avg
			s.poems[i].ReviewCount = len(reviews)
		}
	}
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := paramID(w, ps)
	if !ok {
		return
	}
	var req api.ProfileUpdate
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	for _, other := range s.users {
		if other.user.ID != id && other.user.Email == req.Email {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	a.user.Username = req.Username
	a.user.Email = req.Email
	a.user.ProfilePhoto = req.ProfilePhoto
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file: "+err.Error())
		return
	}
	defer file.Close()
	n, _ := io.Copy(io.Discard, file)
	kind := r.FormValue("kind")
	writeJSON(w, http.StatusOK, map[string]any{
		"url":  fmt.Sprintf("%s/media/%s/%s", s.URL, kind, header.Filename),
		"size": n,
	})
}

func (s *Server) authorName(id *int64) string {
	if id == nil {
		return ""
	}
	for _, a := range s.authors {
		if a.ID == *id {
			return a.Name
		}
	}
	return ""
}

func categoryName(categories []models.Category, id *int64) string {
	if id == nil {
		return ""
	}
	for _, c := range categories {
		if c.ID == *id {
			return c.Name
		}
	}
	return ""
}

// Helpers

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return append([]T(nil), items...)
}

func paramID(w http.ResponseWriter, ps httprouter.Params) (int64, bool) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
