package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/foliohq/folio-server/internal/domain"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "addReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/reviews",
		Summary:       "Review a book",
		Description:   "Adds the current user's review. Each user may review a book once.",
		Tags:          []string{"Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/mine",
		Summary:     "List my reviews",
		Description: "Returns the current user's reviews, newest first, with book titles",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "editReview",
		Method:      http.MethodPatch,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Edit review",
		Description: "Updates the given fields of the current user's review",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEditReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceReview",
		Method:      http.MethodPut,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Edit review (PUT)",
		Description: "Alias of PATCH; only the given fields change",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEditReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Delete review",
		Description: "Deletes the current user's review",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)
}

// === DTOs ===

// AddReviewRequest is the request body for a new review.
type AddReviewRequest struct {
	Rating     *int   `json:"rating,omitempty" doc:"Star rating from 1 to 5"`
	ReviewText string `json:"review_text,omitempty" doc:"Optional review text"`
}

// AddReviewInput wraps the add request for Huma.
type AddReviewInput struct {
	BookID string `path:"id" doc:"Book ID"`
	Body   AddReviewRequest
}

// EditReviewRequest is a partial review update.
type EditReviewRequest struct {
	Rating     *int    `json:"rating,omitempty" doc:"Star rating from 1 to 5"`
	ReviewText *string `json:"review_text,omitempty" doc:"Review text"`
}

// EditReviewInput wraps the edit request for Huma.
type EditReviewInput struct {
	ID   string `path:"id" doc:"Review ID"`
	Body EditReviewRequest
}

// ReviewIDInput identifies a review.
type ReviewIDInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// ReviewOutput wraps a review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// ReviewListOutput wraps the user's reviews for Huma.
type ReviewListOutput struct {
	Body []*domain.ReviewWithBook
}

// === Handlers ===

func (s *Server) handleAddReview(ctx context.Context, input *AddReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.AddReview(ctx, input.BookID, userID, domain.ReviewInput{
		Rating:     input.Body.Rating,
		ReviewText: input.Body.ReviewText,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleListMyReviews(ctx context.Context, _ *struct{}) (*ReviewListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.ListReviewsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ReviewListOutput{Body: reviews}, nil
}

func (s *Server) handleEditReview(ctx context.Context, input *EditReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.EditReview(ctx, input.ID, userID, domain.ReviewPatch{
		Rating:     domain.FromPtr(input.Body.Rating),
		ReviewText: domain.FromPtr(input.Body.ReviewText),
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.DeleteReview(ctx, input.ID, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "review deleted"}}, nil
}
