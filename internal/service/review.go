package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/foliohq/folio-server/internal/domain"
	domainerrors "github.com/foliohq/folio-server/internal/errors"
	"github.com/foliohq/folio-server/internal/id"
	"github.com/foliohq/folio-server/internal/normalize"
	"github.com/foliohq/folio-server/internal/store"
)

// ReviewService manages the review lifecycle. Every mutation runs under the
// book's lock in one transaction together with the rating recompute.
type ReviewService struct {
	store   store.Store
	ratings *RatingAggregator
	locks   *BookLocks
	logger  *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(st store.Store, ratings *RatingAggregator, locks *BookLocks, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:   st,
		ratings: ratings,
		locks:   locks,
		logger:  logger,
	}
}

// AddReview creates userID's review of bookID.
func (s *ReviewService) AddReview(ctx context.Context, bookID, userID string, input domain.ReviewInput) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if userID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	if bookID == "" {
		return nil, domainerrors.Validation("book id is required")
	}
	if input.Rating == nil {
		return nil, domainerrors.ValidationWithDetails("rating is required",
			map[string]string{"rating": "is required"})
	}
	if err := validateRating(*input.Rating); err != nil {
		return nil, err
	}
	text, err := reviewText(input.ReviewText)
	if err != nil {
		return nil, err
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Entity:     domain.Entity{ID: reviewID},
		BookID:     bookID,
		UserID:     userID,
		Rating:     *input.Rating,
		ReviewText: text,
	}
	review.InitTimestamps()

	unlock, err := s.locks.Lock(ctx, bookID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var stats domain.RatingStats
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetBook(ctx, bookID); err != nil {
			return storeError("add review", err, "book not found")
		}

		_, err := tx.FindReviewByBookAndUser(ctx, bookID, userID)
		switch {
		case err == nil:
			return domainerrors.DuplicateReview(bookID)
		case !errors.Is(err, store.ErrNotFound):
			return storeError("add review", err, "review not found")
		}

		if err := tx.CreateReview(ctx, review); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domainerrors.DuplicateReview(bookID)
			}
			return storeError("add review", err, "book not found")
		}

		stats, err = s.ratings.Recompute(ctx, tx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review added",
		"review_id", review.ID,
		"book_id", bookID,
		"user_id", userID,
		"rating", review.Rating,
		"book_average", stats.Average,
	)

	return review, nil
}

// EditReview applies patch to a review owned by actingUserID.
func (s *ReviewService) EditReview(ctx context.Context, reviewID, actingUserID string, patch domain.ReviewPatch) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing, err := s.authorizedReview(ctx, reviewID, actingUserID, "edit review")
	if err != nil {
		return nil, err
	}

	if rating, ok := patch.Rating.Get(); ok {
		if err := validateRating(rating); err != nil {
			return nil, err
		}
	}
	if text, ok := patch.ReviewText.Get(); ok {
		cleaned, err := reviewText(text)
		if err != nil {
			return nil, err
		}
		patch.ReviewText = domain.Set(cleaned)
	}

	unlock, err := s.locks.Lock(ctx, existing.BookID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var review *domain.Review
	err = s.store.InTx(ctx, func(tx store.Store) error {
		// Re-read under the lock: the review may have been deleted meanwhile.
		current, err := tx.GetReview(ctx, reviewID)
		if err != nil {
			return storeError("edit review", err, "review not found")
		}
		if err := domain.Authorize(actingUserID, current.UserID); err != nil {
			return err
		}

		ratingChanged := patch.Apply(current)
		if err := tx.UpdateReview(ctx, current); err != nil {
			return storeError("edit review", err, "review not found")
		}

		if ratingChanged {
			if _, err := s.ratings.Recompute(ctx, tx, current.BookID); err != nil {
				return err
			}
		}

		review = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review edited",
		"review_id", review.ID,
		"book_id", review.BookID,
		"user_id", actingUserID,
		"rating", review.Rating,
	)

	return review, nil
}

// DeleteReview removes a review owned by actingUserID.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, actingUserID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := s.authorizedReview(ctx, reviewID, actingUserID, "delete review")
	if err != nil {
		return err
	}

	unlock, err := s.locks.Lock(ctx, existing.BookID)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.store.InTx(ctx, func(tx store.Store) error {
		current, err := tx.GetReview(ctx, reviewID)
		if err != nil {
			return storeError("delete review", err, "review not found")
		}
		if err := domain.Authorize(actingUserID, current.UserID); err != nil {
			return err
		}

		if err := tx.DeleteReview(ctx, reviewID); err != nil {
			return storeError("delete review", err, "review not found")
		}

		_, err = s.ratings.Recompute(ctx, tx, current.BookID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("review deleted",
		"review_id", reviewID,
		"book_id", existing.BookID,
		"user_id", actingUserID,
	)

	return nil
}

// ListReviewsByUser returns userID's reviews newest first, each with the
// reviewed book's id and title.
func (s *ReviewService) ListReviewsByUser(ctx context.Context, userID string) ([]*domain.ReviewWithBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviewsByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list reviews", err, "user not found")
	}
	if reviews == nil {
		reviews = []*domain.ReviewWithBook{}
	}
	return reviews, nil
}

// authorizedReview loads a review and checks that actingUserID owns it,
// reporting NotFound before Forbidden.
func (s *ReviewService) authorizedReview(ctx context.Context, reviewID, actingUserID, op string) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, storeError(op, err, "review not found")
	}
	if err := domain.Authorize(actingUserID, review.UserID); err != nil {
		s.logger.Warn("review ownership check failed",
			"review_id", reviewID,
			"user_id", actingUserID,
		)
		return nil, err
	}
	return review, nil
}

func validateRating(rating int) error {
	if !domain.ValidRating(rating) {
		return domainerrors.ValidationWithDetails(
			fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating),
			map[string]string{"rating": "out of range"},
		)
	}
	return nil
}

func reviewText(raw string) (string, error) {
	text := normalize.Text(raw)
	if utf8.RuneCountInString(text) > domain.MaxReviewTextLength {
		return "", domainerrors.ValidationWithDetails(
			fmt.Sprintf("review text must be at most %d characters", domain.MaxReviewTextLength),
			map[string]string{"review_text": "too long"},
		)
	}
	return text, nil
}
