package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foliohq/folio-server/internal/domain"
	domainerrors "github.com/foliohq/folio-server/internal/errors"
	"github.com/foliohq/folio-server/internal/normalize"
	"github.com/foliohq/folio-server/internal/search"
	"github.com/foliohq/folio-server/internal/store"
)

// SearchService answers catalog searches. The index only yields ids;
// books are loaded from the store so rating fields are always current.
type SearchService struct {
	store  store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(st store.Store, index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  st,
		index:  index,
		logger: logger,
	}
}

// SearchBooks matches query against title, author and description,
// optionally restricted to a genre. An empty query lists books newest first.
func (s *SearchService) SearchBooks(ctx context.Context, query, genre string, limit, offset int) (*domain.BookSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.index.Search(ctx, search.Params{
		Query:     normalize.Text(query),
		GenreSlug: normalize.GenreSlug(genre),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}

	out := &domain.BookSearchResult{
		Total: res.Total,
		Hits:  make([]domain.BookSearchHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		book, err := s.store.GetBook(ctx, hit.ID)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted after indexing; drop the stale entry.
			s.logger.Debug("search hit missing from store", "book_id", hit.ID)
			continue
		}
		if err != nil {
			return nil, storeError("search books", err, "book not found")
		}
		out.Hits = append(out.Hits, domain.BookSearchHit{
			Book:       *book,
			Score:      hit.Score,
			Highlights: hit.Highlights,
		})
	}

	return out, nil
}

// Reindex rebuilds the index from every stored book.
func (s *SearchService) Reindex(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return storeError("reindex", err, "books not found")
	}

	if err := s.index.Rebuild(ctx, books); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}

	s.logger.Info("search index rebuilt",
		"books", len(books),
		"duration", time.Since(start),
	)
	return nil
}

// ReindexIfNeeded rebuilds the index when it was created empty on open.
func (s *SearchService) ReindexIfNeeded(ctx context.Context) error {
	if !s.index.NeedsReindex() {
		return nil
	}
	return s.Reindex(ctx)
}
