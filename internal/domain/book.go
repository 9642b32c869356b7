package domain

import "github.com/foliohq/folio-server/internal/normalize"

// MaxPublishedYear bounds PublishedYear on create and update.
const MaxPublishedYear = 9999

// Book is a catalog entry. AverageRating, ReviewsCount and RatingBreakdown
// are derived from the book's reviews and only change through a recompute.
type Book struct {
	Entity
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Description     string          `json:"description,omitempty"`
	Genre           string          `json:"genre,omitempty"`
	GenreSlug       string          `json:"genre_slug,omitempty"`
	PublishedYear   *int            `json:"published_year,omitempty"`
	AddedBy         string          `json:"added_by"`
	AverageRating   float64         `json:"average_rating"`
	ReviewsCount    int             `json:"reviews_count"`
	RatingBreakdown RatingBreakdown `json:"rating_breakdown"`
}

// RatingBreakdown counts reviews per star; index 0 holds one-star reviews.
type RatingBreakdown [MaxRating]int

// Add records one review of the given star rating. Out-of-range ratings are ignored.
func (r *RatingBreakdown) Add(rating, count int) {
	if ValidRating(rating) {
		r[rating-1] += count
	}
}

// Stars returns the count for a 1..5 rating.
func (r RatingBreakdown) Stars(rating int) int {
	if !ValidRating(rating) {
		return 0
	}
	return r[rating-1]
}

// Total is the number of reviews represented.
func (r RatingBreakdown) Total() int {
	total := 0
	for _, n := range r {
		total += n
	}
	return total
}

// RatingStats is the aggregate recomputed from a book's reviews.
type RatingStats struct {
	Average   float64
	Count     int
	Breakdown RatingBreakdown
}

// BookFields are the client-supplied fields for a new book.
type BookFields struct {
	Title         string
	Author        string
	Description   string
	Genre         string
	PublishedYear *int
}

// Normalize cleans text fields with normalize.Text, the same rule patches use.
func (f BookFields) Normalize() BookFields {
	f.Title = normalize.Text(f.Title)
	f.Author = normalize.Text(f.Author)
	f.Description = normalize.Text(f.Description)
	f.Genre = normalize.Text(f.Genre)
	return f
}

// BookPatch is a partial update. Derived fields have no counterpart here,
// so a patch can never overwrite them.
type BookPatch struct {
	Title         Optional[string]
	Author        Optional[string]
	Description   Optional[string]
	Genre         Optional[string]
	PublishedYear Optional[*int]
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Author.IsSet() && !p.Description.IsSet() &&
		!p.Genre.IsSet() && !p.PublishedYear.IsSet()
}

// Apply writes the set fields onto b and bumps UpdatedAt.
func (p BookPatch) Apply(b *Book) {
	if v, ok := p.Title.Get(); ok {
		b.Title = normalize.Text(v)
	}
	if v, ok := p.Author.Get(); ok {
		b.Author = normalize.Text(v)
	}
	if v, ok := p.Description.Get(); ok {
		b.Description = normalize.Text(v)
	}
	if v, ok := p.Genre.Get(); ok {
		b.Genre = normalize.Text(v)
	}
	if v, ok := p.PublishedYear.Get(); ok {
		b.PublishedYear = v
	}
	b.Touch()
}

// ValidPublishedYear accepts nil or a year in 0..MaxPublishedYear.
func ValidPublishedYear(year *int) bool {
	return year == nil || (*year >= 0 && *year <= MaxPublishedYear)
}

// BookWithOwner is a listing row with the adding user's identity attached.
type BookWithOwner struct {
	Book
	Owner *UserSummary `json:"owner,omitempty"`
}

// BookDetail is a book with every review and its reviewer.
type BookDetail struct {
	Book
	Reviews []ReviewWithUser `json:"reviews"`
}

// BookPage is one page of the catalog listing.
type BookPage struct {
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
	Pages int             `json:"pages"`
	Books []BookWithOwner `json:"books"`
}

// BookSearchHit is a search result with its relevance score. Highlights
// maps a field name (title or author) to its best marked-up fragment.
type BookSearchHit struct {
	Book       Book              `json:"book"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// BookSearchResult is a page of search hits.
type BookSearchResult struct {
	Total uint64          `json:"total"`
	Hits  []BookSearchHit `json:"hits"`
}
