// Package search keeps a Bleve full-text index of the book catalog.
// The index only answers "which book ids match"; callers load the
// authoritative rows from the store.
package search

import "github.com/foliohq/folio-server/internal/domain"

// BookDocument is what gets indexed for one book.
type BookDocument struct {
	ID            string
	Title         string
	Author        string
	Description   string
	Genre         string
	GenreSlug     string
	PublishedYear int
	CreatedAt     int64 // unix millis
}

// NewBookDocument builds the indexed form of b.
func NewBookDocument(b *domain.Book) *BookDocument {
	doc := &BookDocument{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genre:       b.Genre,
		GenreSlug:   b.GenreSlug,
		CreatedAt:   b.CreatedAt.UnixMilli(),
	}
	if b.PublishedYear != nil {
		doc.PublishedYear = *b.PublishedYear
	}
	return doc
}

// ToMap uses the lowercase field names declared in the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"created_at": d.CreatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.GenreSlug != "" {
		m["genre_slug"] = d.GenreSlug
	}
	if d.PublishedYear != 0 {
		m["published_year"] = d.PublishedYear
	}
	return m
}
