package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio-server/internal/domain"
	domainerrors "github.com/foliohq/folio-server/internal/errors"
)

func TestReviewService_AddReview_UpdatesAggregate(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	book := env.book(t, owner.ID, "The Dispossessed")

	env.review(t, book.ID, alice.ID, 3)

	got, err := env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got.AverageRating, 1e-9)
	assert.Equal(t, 1, got.ReviewsCount)

	env.review(t, book.ID, bob.ID, 1)

	got, err = env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got.AverageRating, 1e-9)
	assert.Equal(t, 2, got.ReviewsCount)
	assert.Equal(t, 1, got.RatingBreakdown.Stars(1))
	assert.Equal(t, 1, got.RatingBreakdown.Stars(3))
}

func TestReviewService_AddReview_Validation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	book := env.book(t, owner.ID, "Lathe of Heaven")

	tests := []struct {
		name  string
		input domain.ReviewInput
	}{
		{"missing rating", domain.ReviewInput{ReviewText: "great"}},
		{"rating too high", domain.ReviewInput{Rating: ptr(6)}},
		{"rating zero", domain.ReviewInput{Rating: ptr(0)}},
		{"text too long", domain.ReviewInput{Rating: ptr(4), ReviewText: strings.Repeat("a", domain.MaxReviewTextLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reviews.AddReview(ctx, book.ID, owner.ID, tt.input)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}

	got, err := env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ReviewsCount)
}

func TestReviewService_AddReview_MissingBook(t *testing.T) {
	env := setupServices(t)
	user := env.user(t, "alice")

	_, err := env.reviews.AddReview(context.Background(), "book-missing", user.ID, domain.ReviewInput{Rating: ptr(4)})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestReviewService_AddReview_Duplicate(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	book := env.book(t, owner.ID, "Earthsea")

	env.review(t, book.ID, alice.ID, 5)

	_, err := env.reviews.AddReview(ctx, book.ID, alice.ID, domain.ReviewInput{Rating: ptr(1)})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateReview)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 409, de.HTTPStatus())

	got, err := env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReviewsCount)
	assert.InDelta(t, 5.0, got.AverageRating, 1e-9)
}

func TestReviewService_EditReview(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	book := env.book(t, owner.ID, "Tehanu")
	review := env.review(t, book.ID, alice.ID, 2)

	t.Run("rating change recomputes", func(t *testing.T) {
		updated, err := env.reviews.EditReview(ctx, review.ID, alice.ID, domain.ReviewPatch{
			Rating: domain.Set(4),
		})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)

		got, err := env.store.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, got.AverageRating, 1e-9)
	})

	t.Run("text only keeps rating", func(t *testing.T) {
		updated, err := env.reviews.EditReview(ctx, review.ID, alice.ID, domain.ReviewPatch{
			ReviewText: domain.Set("  quieter than the others  "),
		})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)
		assert.Equal(t, "quieter than the others", updated.ReviewText)
	})

	t.Run("invalid rating", func(t *testing.T) {
		_, err := env.reviews.EditReview(ctx, review.ID, alice.ID, domain.ReviewPatch{
			Rating: domain.Set(9),
		})
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := env.reviews.EditReview(ctx, review.ID, owner.ID, domain.ReviewPatch{
			Rating: domain.Set(1),
		})
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)

		got, err := env.store.GetReview(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Rating)
	})

	t.Run("missing review", func(t *testing.T) {
		_, err := env.reviews.EditReview(ctx, "review-missing", alice.ID, domain.ReviewPatch{})
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})
}

func TestReviewService_DeleteReview(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	book := env.book(t, owner.ID, "The Word for World is Forest")
	aliceReview := env.review(t, book.ID, alice.ID, 5)
	env.review(t, book.ID, bob.ID, 3)

	err := env.reviews.DeleteReview(ctx, aliceReview.ID, bob.ID)
	require.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, env.reviews.DeleteReview(ctx, aliceReview.ID, alice.ID))

	got, err := env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReviewsCount)
	assert.InDelta(t, 3.0, got.AverageRating, 1e-9)

	err = env.reviews.DeleteReview(ctx, aliceReview.ID, alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Alice may review again once her review is gone.
	env.review(t, book.ID, alice.ID, 1)
}

func TestReviewService_DeleteLastReview_ResetsAggregate(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	book := env.book(t, owner.ID, "Always Coming Home")
	review := env.review(t, book.ID, alice.ID, 4)

	require.NoError(t, env.reviews.DeleteReview(ctx, review.ID, alice.ID))

	got, err := env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.ReviewsCount)
	assert.Zero(t, got.RatingBreakdown.Total())
}

func TestReviewService_ListReviewsByUser(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	first := env.book(t, owner.ID, "Rocannon's World")
	second := env.book(t, owner.ID, "City of Illusions")

	env.review(t, first.ID, alice.ID, 3)
	env.review(t, second.ID, alice.ID, 5)

	reviews, err := env.reviews.ListReviewsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "City of Illusions", reviews[0].Book.Title)
	assert.Equal(t, "Rocannon's World", reviews[1].Book.Title)

	none, err := env.reviews.ListReviewsByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReviewService_ConcurrentReviewsSettle(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	book := env.book(t, owner.ID, "The Left Hand of Darkness")

	const reviewers = 12
	users := make([]*domain.User, reviewers)
	for i := range users {
		users[i] = env.user(t, fmt.Sprintf("reader%02d", i))
	}

	var wg sync.WaitGroup
	sum := 0
	for i, u := range users {
		rating := i%5 + 1
		sum += rating
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.reviews.AddReview(ctx, book.ID, u.ID, domain.ReviewInput{Rating: &rating})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewers, got.ReviewsCount)
	assert.InDelta(t, float64(sum)/reviewers, got.AverageRating, 1e-9)
	assert.Equal(t, reviewers, got.RatingBreakdown.Total())
}
