package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/foliohq/folio-server/internal/domain"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, title, author, description, genre, genre_slug,
	published_year, added_by, average_rating, reviews_count,
	rating_1, rating_2, rating_3, rating_4, rating_5`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b           domain.Book
		createdAt   string
		updatedAt   string
		description sql.NullString
		genre       sql.NullString
		genreSlug   sql.NullString
		year        sql.NullInt64
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.Author,
		&description,
		&genre,
		&genreSlug,
		&year,
		&b.AddedBy,
		&b.AverageRating,
		&b.ReviewsCount,
		&b.RatingBreakdown[0],
		&b.RatingBreakdown[1],
		&b.RatingBreakdown[2],
		&b.RatingBreakdown[3],
		&b.RatingBreakdown[4],
	)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	b.Description = description.String
	b.Genre = genre.String
	b.GenreSlug = genreSlug.String
	if year.Valid {
		y := int(year.Int64)
		b.PublishedYear = &y
	}

	return &b, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CreateBook inserts a book including its current rating state.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	r := book.RatingBreakdown
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		book.Author,
		nullString(book.Description),
		nullString(book.Genre),
		nullString(book.GenreSlug),
		nullInt(book.PublishedYear),
		book.AddedBy,
		book.AverageRating,
		book.ReviewsCount,
		r[0], r[1], r[2], r[3], r[4],
	)
	return mapErr(err)
}

// GetBook retrieves a book by id.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

// UpdateBook writes the editable columns. Rating columns are left alone.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?,
			title = ?,
			author = ?,
			description = ?,
			genre = ?,
			genre_slug = ?,
			published_year = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		book.Author,
		nullString(book.Description),
		nullString(book.Genre),
		nullString(book.GenreSlug),
		nullInt(book.PublishedYear),
		book.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	return expectOne(result)
}

// SetBookRating replaces the derived rating columns.
func (s *Store) SetBookRating(ctx context.Context, bookID string, stats domain.RatingStats) error {
	r := stats.Breakdown
	result, err := s.q.ExecContext(ctx, `
		UPDATE books SET
			average_rating = ?,
			reviews_count = ?,
			rating_1 = ?, rating_2 = ?, rating_3 = ?, rating_4 = ?, rating_5 = ?
		WHERE id = ?`,
		stats.Average,
		stats.Count,
		r[0], r[1], r[2], r[3], r[4],
		bookID,
	)
	if err != nil {
		return mapErr(err)
	}
	return expectOne(result)
}

// DeleteBook removes a book. Remaining reviews go with it via ON DELETE CASCADE.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}
	return expectOne(result)
}

// ListBooks returns one page of books, newest first.
func (s *Store) ListBooks(ctx context.Context, offset, limit int) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
}

// CountBooks returns the total number of books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// ListBooksByOwner returns every book added by ownerID, newest first.
func (s *Store) ListBooksByOwner(ctx context.Context, ownerID string) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE added_by = ? ORDER BY created_at DESC, id DESC`,
		ownerID)
}

// ListAllBooks returns every book in insertion order.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at, id`)
}
