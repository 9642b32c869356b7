package domain

import "strings"

const (
	MinRating = 1
	MaxRating = 5

	// MaxReviewTextLength caps review text, in runes.
	MaxReviewTextLength = 10000
)

// ValidRating reports whether r is a whole star rating from 1 to 5.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Review is one user's rating of one book. A user holds at most one
// review per book.
type Review struct {
	Entity
	BookID     string `json:"book_id"`
	UserID     string `json:"user_id"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text,omitempty"`
}

// ReviewInput is a new review. Rating is a pointer so a missing value
// can be told apart from zero.
type ReviewInput struct {
	Rating     *int
	ReviewText string
}

// ReviewPatch is a partial update to a review.
type ReviewPatch struct {
	Rating     Optional[int]
	ReviewText Optional[string]
}

// Apply writes the set fields onto r and reports whether the rating changed.
func (p ReviewPatch) Apply(r *Review) (ratingChanged bool) {
	if v, ok := p.Rating.Get(); ok && v != r.Rating {
		r.Rating = v
		ratingChanged = true
	}
	if v, ok := p.ReviewText.Get(); ok {
		r.ReviewText = strings.TrimSpace(v)
	}
	r.Touch()
	return ratingChanged
}

// ReviewWithUser is a review with the reviewer's identity.
type ReviewWithUser struct {
	Review
	User *UserSummary `json:"user,omitempty"`
}

// BookRef identifies a book by id and title only.
type BookRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ReviewWithBook is a review with the reviewed book's title.
type ReviewWithBook struct {
	Review
	Book BookRef `json:"book"`
}
