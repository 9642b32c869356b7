package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/foliohq/folio-server/internal/domain"
)

// reviewColumns must match the scan order in scanReview.
const reviewColumns = `id, created_at, updated_at, book_id, user_id, rating, review_text`

func scanReview(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.Review, error) {
	var (
		r         domain.Review
		createdAt string
		updatedAt string
		text      sql.NullString
	)

	dest := append([]any{&r.ID, &createdAt, &updatedAt, &r.BookID, &r.UserID, &r.Rating, &text}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	r.ReviewText = text.String

	return &r, nil
}

// CreateReview inserts a review. A second review of the same book by the
// same user returns store.ErrAlreadyExists.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
		review.BookID,
		review.UserID,
		review.Rating,
		nullString(review.ReviewText),
	)
	return mapErr(err)
}

// GetReview retrieves a review by id.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	r, err := scanReview(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

// FindReviewByBookAndUser returns the user's review of a book, if any.
func (s *Store) FindReviewByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = ? AND user_id = ?`, bookID, userID)
	r, err := scanReview(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

// UpdateReview writes rating, text and updated_at.
func (s *Store) UpdateReview(ctx context.Context, review *domain.Review) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE reviews SET updated_at = ?, rating = ?, review_text = ?
		WHERE id = ?`,
		formatTime(review.UpdatedAt),
		review.Rating,
		nullString(review.ReviewText),
		review.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	return expectOne(result)
}

// DeleteReview removes a review by id.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}
	return expectOne(result)
}

// DeleteReviewsByBook removes every review of a book and returns how many went.
func (s *Store) DeleteReviewsByBook(ctx context.Context, bookID string) (int, error) {
	result, err := s.q.ExecContext(ctx, `DELETE FROM reviews WHERE book_id = ?`, bookID)
	if err != nil {
		return 0, mapErr(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ListReviewsByBook returns a book's reviews oldest first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = ? ORDER BY created_at, id`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ListReviewsByUser returns a user's reviews newest first, each with its book's title.
func (s *Store) ListReviewsByUser(ctx context.Context, userID string) ([]*domain.ReviewWithBook, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT r.id, r.created_at, r.updated_at, r.book_id, r.user_id, r.rating, r.review_text, b.title
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var out []*domain.ReviewWithBook
	for rows.Next() {
		var title string
		r, err := scanReview(rows, &title)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, &domain.ReviewWithBook{
			Review: *r,
			Book:   domain.BookRef{ID: r.BookID, Title: title},
		})
	}
	return out, rows.Err()
}

// ReviewStats groups a book's reviews by star rating and derives the mean.
// A book without reviews yields the zero value.
func (s *Store) ReviewStats(ctx context.Context, bookID string) (domain.RatingStats, error) {
	var stats domain.RatingStats

	rows, err := s.q.QueryContext(ctx,
		`SELECT rating, COUNT(*) FROM reviews WHERE book_id = ? GROUP BY rating`, bookID)
	if err != nil {
		return stats, fmt.Errorf("query review stats: %w", err)
	}
	defer rows.Close()

	sum := 0
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return stats, fmt.Errorf("scan review stats: %w", err)
		}
		stats.Breakdown.Add(rating, count)
		stats.Count += count
		sum += rating * count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}
	return stats, nil
}
