package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio-server/internal/auth"
	"github.com/foliohq/folio-server/internal/config"
	"github.com/foliohq/folio-server/internal/domain"
	"github.com/foliohq/folio-server/internal/search"
	"github.com/foliohq/folio-server/internal/store/sqlite"
	"github.com/foliohq/folio-server/internal/validation"
)

// testEnv wires every service against a temporary SQLite store and an
// in-memory search index.
type testEnv struct {
	store   *sqlite.Store
	index   *search.Index
	tokens  *auth.TokenService
	auth    *AuthService
	books   *BookService
	reviews *ReviewService
	search  *SearchService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.Open(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(filepath.Join(tmpDir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	catalog := config.CatalogConfig{DefaultPageSize: 5, MaxPageSize: 100}
	locks := NewBookLocks()
	ratings := NewRatingAggregator(logger)

	return &testEnv{
		store:   st,
		index:   idx,
		tokens:  tokens,
		auth:    NewAuthService(st, tokens, validation.New(), logger),
		books:   NewBookService(st, idx, locks, catalog, logger),
		reviews: NewReviewService(st, ratings, locks, logger),
		search:  NewSearchService(st, idx, logger),
	}
}

func (e *testEnv) user(t *testing.T, name string) *domain.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return resp.User
}

func (e *testEnv) book(t *testing.T, ownerID, title string) *domain.Book {
	t.Helper()
	b, err := e.books.CreateBook(context.Background(), ownerID, domain.BookFields{
		Title:  title,
		Author: "Ursula K. Le Guin",
		Genre:  "Science Fiction",
	})
	require.NoError(t, err)
	return b
}

func (e *testEnv) review(t *testing.T, bookID, userID string, rating int) *domain.Review {
	t.Helper()
	r, err := e.reviews.AddReview(context.Background(), bookID, userID, domain.ReviewInput{Rating: &rating})
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T {
	return &v
}
