package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params configures a book search.
type Params struct {
	Query     string // free text over title, author and description
	GenreSlug string // exact genre filter
	Limit     int
	Offset    int
}

// Hit is one matching book id.
type Hit struct {
	ID         string
	Score      float64
	Highlights map[string]string
}

// Result is a page of hits plus the total match count.
type Result struct {
	Total uint64
	Hits  []Hit
}

// Search runs params against the index. An empty query lists every book
// (optionally within a genre) newest first.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	if strings.TrimSpace(params.Query) == "" {
		req.SortBy([]string{"-created_at", "-_id"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("author")
	}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func buildQuery(params Params) query.Query {
	var clauses []query.Query

	if text := strings.TrimSpace(params.Query); text != "" {
		title := bleve.NewMatchQuery(text)
		title.SetField("title")
		title.SetBoost(3)

		author := bleve.NewMatchQuery(text)
		author.SetField("author")
		author.SetBoost(2)

		description := bleve.NewMatchQuery(text)
		description.SetField("description")

		// typo tolerance on titles
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{title, author, description, fuzzy}

		if len(text) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(text))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		clauses = append(clauses, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.GenreSlug != "" {
		genre := bleve.NewTermQuery(params.GenreSlug)
		genre.SetField("genre_slug")
		clauses = append(clauses, genre)
	}

	switch len(clauses) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return clauses[0]
	default:
		return bleve.NewConjunctionQuery(clauses...)
	}
}
