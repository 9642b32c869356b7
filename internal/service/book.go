package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/foliohq/folio-server/internal/config"
	"github.com/foliohq/folio-server/internal/domain"
	domainerrors "github.com/foliohq/folio-server/internal/errors"
	"github.com/foliohq/folio-server/internal/id"
	"github.com/foliohq/folio-server/internal/normalize"
	"github.com/foliohq/folio-server/internal/store"
)

// reviewLoadConcurrency bounds parallel review loads in ListBooksByOwner.
const reviewLoadConcurrency = 4

// BookIndexer keeps a search index in step with the catalog.
type BookIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// BookService manages the book lifecycle.
type BookService struct {
	store   store.Store
	index   BookIndexer
	locks   *BookLocks
	catalog config.CatalogConfig
	logger  *slog.Logger
}

// NewBookService creates a new book service. index may be nil, in which
// case search indexing is skipped.
func NewBookService(st store.Store, index BookIndexer, locks *BookLocks, catalog config.CatalogConfig, logger *slog.Logger) *BookService {
	return &BookService{
		store:   st,
		index:   index,
		locks:   locks,
		catalog: catalog,
		logger:  logger,
	}
}

// CreateBook adds a book owned by ownerID with zeroed rating state.
func (s *BookService) CreateBook(ctx context.Context, ownerID string, fields domain.BookFields) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ownerID == "" {
		return nil, domainerrors.Unauthorized("authentication required")
	}

	fields = fields.Normalize()
	if err := validateBookFields(fields); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Entity:        domain.Entity{ID: bookID},
		Title:         fields.Title,
		Author:        fields.Author,
		Description:   normalize.Description(fields.Description),
		Genre:         fields.Genre,
		GenreSlug:     normalize.GenreSlug(fields.Genre),
		PublishedYear: fields.PublishedYear,
		AddedBy:       ownerID,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, storeError("create book", err, "owner not found")
	}

	s.indexBook(ctx, book)

	s.logger.Info("book created",
		"book_id", book.ID,
		"owner_id", ownerID,
		"title", book.Title,
	)

	return book, nil
}

// GetBook returns a book with all its reviews, oldest first, each carrying
// the reviewer's identity.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.BookDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError("get book", err, "book not found")
	}

	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, storeError("get book", err, "book not found")
	}

	users, err := s.usersByID(ctx, reviewerIDs(reviews))
	if err != nil {
		return nil, err
	}

	return &domain.BookDetail{
		Book:    *book,
		Reviews: withReviewers(reviews, users),
	}, nil
}

// ListBooks returns one page of the catalog, newest first, with each
// book's owner attached. Page and limit below 1 fall back to the defaults
// and limit is capped at the configured maximum.
func (s *BookService) ListBooks(ctx context.Context, page, limit int) (*domain.BookPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := store.PageRequest{Page: page, Limit: limit}.
		Normalize(s.catalog.DefaultPageSize, s.catalog.MaxPageSize)

	total, err := s.store.CountBooks(ctx)
	if err != nil {
		return nil, storeError("list books", err, "books not found")
	}

	pages := store.PageCount(total, req.Limit)
	var books []*domain.Book
	if req.Page <= pages {
		books, err = s.store.ListBooks(ctx, req.Offset(), req.Limit)
		if err != nil {
			return nil, storeError("list books", err, "books not found")
		}
	}

	ownerIDs := make([]string, 0, len(books))
	for _, b := range books {
		ownerIDs = append(ownerIDs, b.AddedBy)
	}
	owners, err := s.usersByID(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.BookWithOwner, 0, len(books))
	for _, b := range books {
		row := domain.BookWithOwner{Book: *b}
		if owner, ok := owners[b.AddedBy]; ok {
			summary := owner.Summary()
			row.Owner = &summary
		}
		rows = append(rows, row)
	}

	return &domain.BookPage{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
		Pages: pages,
		Books: rows,
	}, nil
}

// UpdateBook applies patch to a book owned by actingUserID. Rating fields
// are never touched.
func (s *BookService) UpdateBook(ctx context.Context, bookID, actingUserID string, patch domain.BookPatch) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError("update book", err, "book not found")
	}
	if err := domain.Authorize(actingUserID, book.AddedBy); err != nil {
		s.logger.Warn("book ownership check failed",
			"book_id", bookID,
			"user_id", actingUserID,
		)
		return nil, err
	}

	if err := validateBookPatch(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return book, nil
	}

	patch.Apply(book)
	if _, ok := patch.Description.Get(); ok {
		book.Description = normalize.Description(book.Description)
	}
	if _, ok := patch.Genre.Get(); ok {
		book.GenreSlug = normalize.GenreSlug(book.Genre)
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, storeError("update book", err, "book not found")
	}

	// Return the stored row so rating fields reflect any recompute that
	// landed between the read and the write.
	updated, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError("update book", err, "book not found")
	}

	s.indexBook(ctx, updated)

	s.logger.Info("book updated",
		"book_id", bookID,
		"user_id", actingUserID,
	)

	return updated, nil
}

// DeleteBook removes a book owned by actingUserID together with its reviews.
func (s *BookService) DeleteBook(ctx context.Context, bookID, actingUserID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return storeError("delete book", err, "book not found")
	}
	if err := domain.Authorize(actingUserID, book.AddedBy); err != nil {
		s.logger.Warn("book ownership check failed",
			"book_id", bookID,
			"user_id", actingUserID,
		)
		return err
	}

	unlock, err := s.locks.Lock(ctx, bookID)
	if err != nil {
		return err
	}
	defer unlock()

	var removed int
	err = s.store.InTx(ctx, func(tx store.Store) error {
		n, err := tx.DeleteReviewsByBook(ctx, bookID)
		if err != nil {
			return storeError("delete book", err, "book not found")
		}
		removed = n

		if err := tx.DeleteBook(ctx, bookID); err != nil {
			return storeError("delete book", err, "book not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteBook(ctx, bookID); err != nil {
			s.logger.Warn("failed to remove book from search index",
				"book_id", bookID,
				"error", err,
			)
		}
	}

	s.logger.Info("book deleted",
		"book_id", bookID,
		"user_id", actingUserID,
		"reviews_removed", removed,
	)

	return nil
}

// ListBooksByOwner returns ownerID's books newest first, each with its
// reviews and reviewers.
func (s *BookService) ListBooksByOwner(ctx context.Context, ownerID string) ([]*domain.BookDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	books, err := s.store.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("list owner books", err, "user not found")
	}

	reviews := make([][]*domain.Review, len(books))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reviewLoadConcurrency)
	for i, b := range books {
		g.Go(func() error {
			rs, err := s.store.ListReviewsByBook(gctx, b.ID)
			if err != nil {
				return storeError("list owner books", err, "book not found")
			}
			reviews[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var allReviews []*domain.Review
	for _, rs := range reviews {
		allReviews = append(allReviews, rs...)
	}
	users, err := s.usersByID(ctx, reviewerIDs(allReviews))
	if err != nil {
		return nil, err
	}

	details := make([]*domain.BookDetail, 0, len(books))
	for i, b := range books {
		details = append(details, &domain.BookDetail{
			Book:    *b,
			Reviews: withReviewers(reviews[i], users),
		})
	}
	return details, nil
}

func (s *BookService) indexBook(ctx context.Context, book *domain.Book) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book",
			"book_id", book.ID,
			"error", err,
		)
	}
}

// usersByID loads users and keys them by id. Missing users are skipped.
func (s *BookService) usersByID(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	found, err := s.store.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, storeError("load users", err, "user not found")
	}
	for _, u := range found {
		users[u.ID] = u
	}
	return users, nil
}

func reviewerIDs(reviews []*domain.Review) []string {
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	return ids
}

func withReviewers(reviews []*domain.Review, users map[string]*domain.User) []domain.ReviewWithUser {
	out := make([]domain.ReviewWithUser, 0, len(reviews))
	for _, r := range reviews {
		row := domain.ReviewWithUser{Review: *r}
		if u, ok := users[r.UserID]; ok {
			summary := u.Summary()
			row.User = &summary
		}
		out = append(out, row)
	}
	return out
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func validateBookFields(f domain.BookFields) error {
	details := map[string]string{}
	if f.Title == "" {
		details["title"] = "is required"
	}
	if f.Author == "" {
		details["author"] = "is required"
	}
	if !domain.ValidPublishedYear(f.PublishedYear) {
		details["published_year"] = fmt.Sprintf("must be between 0 and %d", domain.MaxPublishedYear)
	}
	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("invalid book", details)
	}
	return nil
}

func validateBookPatch(p domain.BookPatch) error {
	details := map[string]string{}
	if v, ok := p.Title.Get(); ok && normalize.Text(v) == "" {
		details["title"] = "cannot be empty"
	}
	if v, ok := p.Author.Get(); ok && normalize.Text(v) == "" {
		details["author"] = "cannot be empty"
	}
	if v, ok := p.PublishedYear.Get(); ok && !domain.ValidPublishedYear(v) {
		details["published_year"] = fmt.Sprintf("must be between 0 and %d", domain.MaxPublishedYear)
	}
	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("invalid book update", details)
	}
	return nil
}
