package service

import (
	"context"
	"log/slog"

	"github.com/foliohq/folio-server/internal/domain"
	"github.com/foliohq/folio-server/internal/store"
)

// RatingAggregator recomputes a book's derived rating fields from its reviews.
type RatingAggregator struct {
	logger *slog.Logger
}

// NewRatingAggregator creates a rating aggregator.
func NewRatingAggregator(logger *slog.Logger) *RatingAggregator {
	return &RatingAggregator{logger: logger}
}

// Recompute reads the book's review stats and writes them back onto the
// book. Pass the transactional store so the write commits or rolls back
// with the review change that triggered it.
func (a *RatingAggregator) Recompute(ctx context.Context, st store.Store, bookID string) (domain.RatingStats, error) {
	stats, err := st.ReviewStats(ctx, bookID)
	if err != nil {
		return domain.RatingStats{}, storeError("recompute rating", err, "book not found")
	}

	if err := st.SetBookRating(ctx, bookID, stats); err != nil {
		return domain.RatingStats{}, storeError("recompute rating", err, "book not found")
	}

	a.logger.Debug("book rating recomputed",
		"book_id", bookID,
		"average", stats.Average,
		"count", stats.Count,
	)

	return stats, nil
}
