package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio-server/internal/domain"
	domainerrors "github.com/foliohq/folio-server/internal/errors"
)

func TestBookService_CreateBook(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	book, err := env.books.CreateBook(ctx, owner.ID, domain.BookFields{
		Title:         "  A Wizard of Earthsea ",
		Author:        "Ursula K. Le Guin",
		Description:   "<p>A <strong>mage</strong> comes of age.</p>",
		Genre:         "Sci-Fi",
		PublishedYear: ptr(1968),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "A Wizard of Earthsea", book.Title)
	assert.Equal(t, owner.ID, book.AddedBy)
	assert.Equal(t, "A **mage** comes of age.", book.Description)
	assert.Equal(t, "science-fiction", book.GenreSlug)
	assert.Zero(t, book.AverageRating)
	assert.Zero(t, book.ReviewsCount)

	count, err := env.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestBookService_CreateBook_Validation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	tests := []struct {
		name   string
		fields domain.BookFields
		field  string
	}{
		{"missing title", domain.BookFields{Author: "A"}, "title"},
		{"blank author", domain.BookFields{Title: "T", Author: "   "}, "author"},
		{"NUL-only title", domain.BookFields{Title: "\x00", Author: "A"}, "title"},
		{"year out of range", domain.BookFields{Title: "T", Author: "A", PublishedYear: ptr(10000)}, "published_year"},
		{"negative year", domain.BookFields{Title: "T", Author: "A", PublishedYear: ptr(-1)}, "published_year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.books.CreateBook(ctx, owner.ID, tt.fields)
			require.ErrorIs(t, err, domainerrors.ErrValidation)

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Details, tt.field)
		})
	}

	total, err := env.store.CountBooks(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBookService_GetBook_WithReviewers(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	book := env.book(t, owner.ID, "The Telling")

	env.review(t, book.ID, alice.ID, 4)
	env.review(t, book.ID, bob.ID, 2)

	detail, err := env.books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 2)

	assert.Equal(t, alice.ID, detail.Reviews[0].UserID)
	require.NotNil(t, detail.Reviews[0].User)
	assert.Equal(t, "alice", detail.Reviews[0].User.Name)
	assert.Equal(t, "alice@example.com", detail.Reviews[0].User.Email)
	assert.Equal(t, bob.ID, detail.Reviews[1].UserID)
	assert.InDelta(t, 3.0, detail.AverageRating, 1e-9)

	_, err = env.books.GetBook(ctx, "book-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookService_ListBooks_Pagination(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	for i := range 7 {
		env.book(t, owner.ID, fmt.Sprintf("Book %d", i))
	}

	page, err := env.books.ListBooks(ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Books, 2)

	// newest first, so the second page holds the two oldest books
	assert.Equal(t, "Book 1", page.Books[0].Title)
	assert.Equal(t, "Book 0", page.Books[1].Title)
	require.NotNil(t, page.Books[0].Owner)
	assert.Equal(t, owner.ID, page.Books[0].Owner.ID)
}

func TestBookService_ListBooks_Defaults(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	for i := range 7 {
		env.book(t, owner.ID, fmt.Sprintf("Book %d", i))
	}

	tests := []struct {
		name        string
		page, limit int
		wantPage    int
		wantLimit   int
		wantBooks   int
	}{
		{"zero values", 0, 0, 1, 5, 5},
		{"negative values", -3, -1, 1, 5, 5},
		{"clamped limit", 1, 1000, 1, 100, 7},
		{"past the end", 9, 5, 9, 5, 0},
		{"huge page number", 1<<62 + 1, 4, 1<<62 + 1, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.books.ListBooks(ctx, tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.Len(t, page.Books, tt.wantBooks)
			assert.Equal(t, 7, page.Total)
		})
	}
}

func TestBookService_UpdateBook(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	other := env.user(t, "other")
	book := env.book(t, owner.ID, "Planet of Exile")
	env.review(t, book.ID, other.ID, 5)

	t.Run("non-owner is forbidden and nothing changes", func(t *testing.T) {
		_, err := env.books.UpdateBook(ctx, book.ID, other.ID, domain.BookPatch{
			Title: domain.Set("Hijacked"),
		})
		require.ErrorIs(t, err, domainerrors.ErrForbidden)

		got, err := env.store.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Planet of Exile", got.Title)
	})

	t.Run("owner patches set fields only", func(t *testing.T) {
		updated, err := env.books.UpdateBook(ctx, book.ID, owner.ID, domain.BookPatch{
			Genre:         domain.Set("Fantasy"),
			PublishedYear: domain.Set(ptr(1966)),
		})
		require.NoError(t, err)
		assert.Equal(t, "Planet of Exile", updated.Title)
		assert.Equal(t, "fantasy", updated.GenreSlug)
		require.NotNil(t, updated.PublishedYear)
		assert.Equal(t, 1966, *updated.PublishedYear)

		// rating state survives an update
		assert.InDelta(t, 5.0, updated.AverageRating, 1e-9)
		assert.Equal(t, 1, updated.ReviewsCount)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := env.books.UpdateBook(ctx, book.ID, owner.ID, domain.BookPatch{
			Title: domain.Set("  "),
		})
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	})

	t.Run("missing book", func(t *testing.T) {
		_, err := env.books.UpdateBook(ctx, "book-missing", owner.ID, domain.BookPatch{})
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})
}

func TestBookService_DeleteBook_CascadesReviews(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	book := env.book(t, owner.ID, "The Eye of the Heron")
	review := env.review(t, book.ID, alice.ID, 4)

	err := env.books.DeleteBook(ctx, book.ID, alice.ID)
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	intact, err := env.books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, intact.Title)
	assert.Equal(t, 1, intact.ReviewsCount)
	assert.InDelta(t, 4.0, intact.AverageRating, 1e-9)
	require.Len(t, intact.Reviews, 1)
	assert.Equal(t, review.ID, intact.Reviews[0].ID)
	assert.Equal(t, 4, intact.Reviews[0].Rating)
	indexed, err := env.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), indexed)

	require.NoError(t, env.books.DeleteBook(ctx, book.ID, owner.ID))

	_, err = env.books.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.reviews.EditReview(ctx, review.ID, alice.ID, domain.ReviewPatch{Rating: domain.Set(2)})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	mine, err := env.reviews.ListReviewsByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	count, err := env.index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	err = env.books.DeleteBook(ctx, book.ID, owner.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookService_ListBooksByOwner(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	other := env.user(t, "other")
	alice := env.user(t, "alice")

	older := env.book(t, owner.ID, "Older")
	newer := env.book(t, owner.ID, "Newer")
	env.book(t, other.ID, "Not mine")

	env.review(t, older.ID, alice.ID, 2)
	env.review(t, newer.ID, alice.ID, 5)
	env.review(t, newer.ID, other.ID, 3)

	books, err := env.books.ListBooksByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, newer.ID, books[0].ID)
	assert.Len(t, books[0].Reviews, 2)
	assert.Equal(t, older.ID, books[1].ID)
	require.Len(t, books[1].Reviews, 1)
	require.NotNil(t, books[1].Reviews[0].User)
	assert.Equal(t, alice.ID, books[1].Reviews[0].User.ID)

	none, err := env.books.ListBooksByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
