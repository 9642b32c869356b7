// Package store defines the persistence contract for the Folio server.
package store

import (
	"context"

	"github.com/foliohq/folio-server/internal/domain"
)

// Store is every persistence operation the services rely on.
// Lookups return ErrNotFound for missing rows; inserts return
// ErrAlreadyExists on uniqueness violations.
type Store interface {
	// Ping checks that the backing database answers.
	Ping(ctx context.Context) error

	// InTx runs fn against a Store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling InTx on a transactional Store joins the outer transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	// UpdateBook writes the client-editable columns only. Derived rating
	// columns are owned by SetBookRating.
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	// ListBooks returns books newest first, ties broken by id descending.
	ListBooks(ctx context.Context, offset, limit int) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
	ListBooksByOwner(ctx context.Context, ownerID string) ([]*domain.Book, error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	SetBookRating(ctx context.Context, bookID string, stats domain.RatingStats) error

	// Reviews
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	FindReviewByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error)
	UpdateReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, id string) error
	DeleteReviewsByBook(ctx context.Context, bookID string) (int, error)
	// ListReviewsByBook returns the book's reviews oldest first.
	ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error)
	// ListReviewsByUser returns the user's reviews newest first with the book title attached.
	ListReviewsByUser(ctx context.Context, userID string) ([]*domain.ReviewWithBook, error)
	// ReviewStats groups a book's reviews by rating.
	ReviewStats(ctx context.Context, bookID string) (domain.RatingStats, error)
}
