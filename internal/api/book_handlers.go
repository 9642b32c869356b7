package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/foliohq/folio-server/internal/domain"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of the catalog, newest first, with each book's owner",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search books",
		Description: "Full-text search over title, author and description, optionally filtered by genre",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/mine",
		Summary:     "List my books",
		Description: "Returns the books added by the current user, each with its reviews",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with all of its reviews, oldest first",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a book owned by the current user",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates the given fields of a book the current user owns",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book (PUT)",
		Description: "Alias of PATCH; only the given fields change",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book the current user owns, along with its reviews",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// ListBooksInput contains pagination parameters.
type ListBooksInput struct {
	Page  int `query:"page" doc:"Page number, from 1"`
	Limit int `query:"limit" doc:"Books per page"`
}

// BookPageOutput wraps a catalog page for Huma.
type BookPageOutput struct {
	Body *domain.BookPage
}

// SearchBooksInput contains search parameters.
type SearchBooksInput struct {
	Query  string `query:"q" doc:"Free-text query"`
	Genre  string `query:"genre" doc:"Genre filter"`
	Limit  int    `query:"limit" doc:"Maximum hits"`
	Offset int    `query:"offset" doc:"Hits to skip"`
}

// SearchBooksOutput wraps search results for Huma.
type SearchBooksOutput struct {
	Body *domain.BookSearchResult
}

// BookIDInput identifies a book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetailOutput wraps a book with reviews for Huma.
type BookDetailOutput struct {
	Body *domain.BookDetail
}

// BookDetailListOutput wraps a list of books with reviews for Huma.
type BookDetailListOutput struct {
	Body []*domain.BookDetail
}

// CreateBookRequest is the request body for adding a book.
type CreateBookRequest struct {
	Title         string `json:"title" maxLength:"500" doc:"Book title"`
	Author        string `json:"author" maxLength:"500" doc:"Book author"`
	Description   string `json:"description,omitempty" maxLength:"20000" doc:"Description; HTML is converted to Markdown"`
	Genre         string `json:"genre,omitempty" maxLength:"100" doc:"Genre"`
	PublishedYear *int   `json:"published_year,omitempty" doc:"Year of publication"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// UpdateBookRequest is a partial book update. Omitted fields are unchanged.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" maxLength:"500" doc:"Book title"`
	Author        *string `json:"author,omitempty" maxLength:"500" doc:"Book author"`
	Description   *string `json:"description,omitempty" maxLength:"20000" doc:"Description"`
	Genre         *string `json:"genre,omitempty" maxLength:"100" doc:"Genre"`
	PublishedYear *int    `json:"published_year,omitempty" doc:"Year of publication"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookPageOutput, error) {
	page, err := s.services.Book.ListBooks(ctx, input.Page, input.Limit)
	if err != nil {
		return nil, err
	}
	return &BookPageOutput{Body: page}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	res, err := s.services.Search.SearchBooks(ctx, input.Query, input.Genre, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return &SearchBooksOutput{Body: res}, nil
}

func (s *Server) handleListMyBooks(ctx context.Context, _ *struct{}) (*BookDetailListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooksByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BookDetailListOutput{Body: books}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookDetailOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookDetailOutput{Body: book}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, userID, domain.BookFields{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		Description:   input.Body.Description,
		Genre:         input.Body.Genre,
		PublishedYear: input.Body.PublishedYear,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	patch := domain.BookPatch{
		Title:       domain.FromPtr(input.Body.Title),
		Author:      domain.FromPtr(input.Body.Author),
		Description: domain.FromPtr(input.Body.Description),
		Genre:       domain.FromPtr(input.Body.Genre),
	}
	if input.Body.PublishedYear != nil {
		patch.PublishedYear = domain.Set(input.Body.PublishedYear)
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, userID, patch)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "book deleted"}}, nil
}
