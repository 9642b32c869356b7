package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping declares the book document fields.
// Title and author carry term vectors for highlighting; the genre slug is
// a keyword so filters match exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true
	doc.AddFieldMappingsAt("title", title)

	// Names should not be stemmed.
	author := bleve.NewTextFieldMapping()
	author.Analyzer = simple.Name
	author.Store = true
	author.IncludeTermVectors = true
	doc.AddFieldMappingsAt("author", author)

	description := bleve.NewTextFieldMapping()
	description.Analyzer = en.AnalyzerName
	description.Store = false
	doc.AddFieldMappingsAt("description", description)

	genre := bleve.NewTextFieldMapping()
	genre.Analyzer = simple.Name
	genre.Store = true
	doc.AddFieldMappingsAt("genre", genre)

	genreSlug := bleve.NewTextFieldMapping()
	genreSlug.Analyzer = keyword.Name
	genreSlug.Store = true
	doc.AddFieldMappingsAt("genre_slug", genreSlug)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("id", id)

	year := bleve.NewNumericFieldMapping()
	year.Store = true
	doc.AddFieldMappingsAt("published_year", year)

	createdAt := bleve.NewNumericFieldMapping()
	createdAt.Store = true
	doc.AddFieldMappingsAt("created_at", createdAt)

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
