package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/foliohq/folio-server/internal/domain"
)

// mappingVersion changes whenever buildIndexMapping does. A mismatch on
// open discards the old index so it can be rebuilt from the store.
const mappingVersion = "1"

const batchSize = 500

// Index wraps a Bleve index of books. All methods are safe for concurrent use.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex // held exclusively while rebuilding

	// fresh is true when Open created an empty index that needs a reindex.
	fresh bool
}

// Options configures Open.
type Options struct {
	Path   string // index directory; "" keeps the index in memory
	Logger *slog.Logger
}

// Open opens the index at opts.Path, creating it when missing, corrupt,
// or built with a different mapping version.
func Open(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Index{index: idx, logger: logger, fresh: true}, nil
	}

	versionPath := opts.Path + ".version"

	var idx bleve.Index
	if _, err := os.Stat(opts.Path); err == nil {
		version, readErr := os.ReadFile(versionPath) //#nosec G304 -- derived from configured data dir
		switch {
		case readErr != nil || string(version) != mappingVersion:
			logger.Info("search mapping changed, rebuilding index", "path", opts.Path, "version", mappingVersion)
		default:
			if idx, err = bleve.Open(opts.Path); err != nil {
				logger.Warn("failed to open search index, recreating", "path", opts.Path, "error", err)
				idx = nil
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat index: %w", err)
	}

	s := &Index{index: idx, path: opts.Path, logger: logger}
	if idx != nil {
		logger.Info("opened search index", "path", opts.Path)
		return s, nil
	}

	if err := s.create(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o600); err != nil {
		logger.Warn("failed to write search version file", "error", err)
	}
	return s, nil
}

func (s *Index) create() error {
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove old index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	idx, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = idx
	s.fresh = true
	s.logger.Info("created search index", "path", s.path, "mapping_version", mappingVersion)
	return nil
}

// NeedsReindex reports whether the index was created empty on open.
func (s *Index) NeedsReindex() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fresh
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces one book.
func (s *Index) IndexBook(_ context.Context, b *domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := NewBookDocument(b)
	return s.index.Index(doc.ID, doc.ToMap())
}

func (s *Index) indexBatched(books []*domain.Book) error {
	for start := 0; start < len(books); start += batchSize {
		end := min(start+batchSize, len(books))

		batch := s.index.NewBatch()
		for _, b := range books[start:end] {
			doc := NewBookDocument(b)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteBook removes a book. Deleting an unknown id is not an error.
func (s *Index) DeleteBook(_ context.Context, bookID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(bookID)
}

// DocumentCount returns the number of indexed books.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with books. It blocks searches
// and writes until done.
func (s *Index) Rebuild(_ context.Context, books []*domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	if s.path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return fmt.Errorf("create memory index: %w", err)
		}
		s.index = idx
	} else if err := s.create(); err != nil {
		return err
	}

	if err := s.indexBatched(books); err != nil {
		return err
	}

	s.fresh = false
	s.logger.Info("rebuilt search index", "books", len(books))
	return nil
}
