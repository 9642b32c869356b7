package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio-server/internal/domain"
)

func TestReviews_AggregateFollowsMutations(t *testing.T) {
	ts := setupTestServer(t, testConfig())
	ownerAuth, _ := ts.register(t, "owner")
	aliceAuth, _ := ts.register(t, "alice")
	bobAuth, _ := ts.register(t, "bob")
	bookID := ts.createBook(t, ownerAuth, "Lilith's Brood")

	ts.addReview(t, aliceAuth, bookID, 3)
	bobReview := ts.addReview(t, bobAuth, bookID, 1)

	book := ts.getBook(t, bookID)
	assert.InDelta(t, 2.0, book.AverageRating, 1e-9)
	assert.Equal(t, 2, book.ReviewsCount)
	require.Len(t, book.Reviews, 2)
	require.NotNil(t, book.Reviews[0].User)
	assert.Equal(t, "alice", book.Reviews[0].User.Name)

	resp := ts.api.Patch("/api/v1/reviews/"+bobReview, bobAuth, map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.InDelta(t, 4.0, ts.getBook(t, bookID).AverageRating, 1e-9)

	resp = ts.api.Delete("/api/v1/reviews/"+bobReview, bobAuth)
	require.Equal(t, http.StatusOK, resp.Code)

	book = ts.getBook(t, bookID)
	assert.InDelta(t, 3.0, book.AverageRating, 1e-9)
	assert.Equal(t, 1, book.ReviewsCount)
}

func TestReviews_Errors(t *testing.T) {
	ts := setupTestServer(t, testConfig())
	ownerAuth, _ := ts.register(t, "owner")
	aliceAuth, _ := ts.register(t, "alice")
	bookID := ts.createBook(t, ownerAuth, "Mind of My Mind")
	reviewID := ts.addReview(t, aliceAuth, bookID, 4)
	reviewsPath := fmt.Sprintf("/api/v1/books/%s/reviews", bookID)

	tests := []struct {
		name   string
		do     func() int
		status int
	}{
		{"duplicate review", func() int {
			return ts.api.Post(reviewsPath, aliceAuth, map[string]any{"rating": 2}).Code
		}, http.StatusConflict},
		{"missing rating", func() int {
			return ts.api.Post(reviewsPath, ownerAuth, map[string]any{"review_text": "no stars"}).Code
		}, http.StatusBadRequest},
		{"rating out of range", func() int {
			return ts.api.Post(reviewsPath, ownerAuth, map[string]any{"rating": 6}).Code
		}, http.StatusBadRequest},
		{"unknown book", func() int {
			return ts.api.Post("/api/v1/books/book-missing/reviews", ownerAuth, map[string]any{"rating": 3}).Code
		}, http.StatusNotFound},
		{"anonymous", func() int {
			return ts.api.Post(reviewsPath, map[string]any{"rating": 3}).Code
		}, http.StatusUnauthorized},
		{"edit someone else's review", func() int {
			return ts.api.Patch("/api/v1/reviews/"+reviewID, ownerAuth, map[string]any{"rating": 1}).Code
		}, http.StatusForbidden},
		{"delete someone else's review", func() int {
			return ts.api.Delete("/api/v1/reviews/"+reviewID, ownerAuth).Code
		}, http.StatusForbidden},
		{"edit missing review", func() int {
			return ts.api.Put("/api/v1/reviews/review-missing", aliceAuth, map[string]any{"rating": 1}).Code
		}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.do())
		})
	}

	book := ts.getBook(t, bookID)
	assert.Equal(t, 1, book.ReviewsCount)
	assert.InDelta(t, 4.0, book.AverageRating, 1e-9)
}

func TestReviews_Mine(t *testing.T) {
	ts := setupTestServer(t, testConfig())
	ownerAuth, _ := ts.register(t, "owner")
	aliceAuth, _ := ts.register(t, "alice")
	first := ts.createBook(t, ownerAuth, "Imago")
	second := ts.createBook(t, ownerAuth, "Adulthood Rites")
	ts.addReview(t, aliceAuth, first, 5)
	ts.addReview(t, aliceAuth, second, 2)

	resp := ts.api.Get("/api/v1/reviews/mine", aliceAuth)
	require.Equal(t, http.StatusOK, resp.Code)

	mine := decode[[]domain.ReviewWithBook](t, resp.Body.Bytes())
	require.Len(t, mine.Data, 2)
	assert.Equal(t, "Adulthood Rites", mine.Data[0].Book.Title)
	assert.Equal(t, first, mine.Data[1].Book.ID)
}

func (ts *testServer) getBook(t *testing.T, bookID string) domain.BookDetail {
	t.Helper()
	resp := ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[domain.BookDetail](t, resp.Body.Bytes()).Data
}
