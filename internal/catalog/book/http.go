// Copyright (c) 2026 Shelfy. All rights reserved.

/*
HTTP delivery layer for the book catalogue.

The handler mediates between the web and the [Service]:
  - Protocol: Standard RESTful JSON interface.
  - Authorization: Catalogue mutations are admin-gated; reviews require a
    logged-in reader.
  - Verification: Enforces strict input validation before passing to [Service].
*/
package book

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfy-app/shelfy/internal/platform/middleware"
	requestutil "github.com/shelfy-app/shelfy/internal/platform/request"
	"github.com/shelfy-app/shelfy/internal/platform/respond"
	"github.com/shelfy-app/shelfy/internal/platform/sec"
	"github.com/shelfy-app/shelfy/internal/platform/validate"
	"github.com/shelfy-app/shelfy/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements book catalogue HTTP endpoints.
type Handler struct {
	bookService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{bookService: service}
}

// Routes returns a [chi.Router] configured with book-specific routes,
// mounted under /books.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public catalogue access
	router.Get("/", handler.browse)
	router.Get("/id/{bookID}", handler.getByID)
	router.Get("/id/{bookID}/reviews", handler.listReviews)
	router.Get("/isbn/{isbn}", handler.getByISBN)

	// Review endpoints for logged-in readers
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/id/{bookID}/reviews", handler.addReview)
		r.Put("/id/{bookID}/reviews", handler.updateReview)
		r.Delete("/id/{bookID}/reviews", handler.deleteReview)
	})

	// Administrative catalogue management
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Post("/", handler.create)
		r.Patch("/id/{bookID}", handler.update)
		r.Delete("/id/{bookID}", handler.delete)
		r.Post("/id/{bookID}/authors", handler.addAuthor)
		r.Delete("/id/{bookID}/authors/{authorID}", handler.removeAuthor)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title"`
	Description   string    `json:"description"`
	ISBN          string    `json:"isbn"`
	CoverURL      string    `json:"cover_url"`
	Publisher     string    `json:"publisher"`
	Pages         int       `json:"pages"`
	PublishedAt   time.Time `json:"published_at"`
}

type updateRequest struct {
	Title         *string    `json:"title"`
	OriginalTitle *string    `json:"original_title"`
	Description   *string    `json:"description"`
	ISBN          *string    `json:"isbn"`
	CoverURL      *string    `json:"cover_url"`
	Publisher     *string    `json:"publisher"`
	Pages         *int       `json:"pages"`
	PublishedAt   *time.Time `json:"published_at"`
}

type addAuthorRequest struct {
	AuthorID string `json:"author_id"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

/*
Browse lists catalogued books with pagination and optional title search.

GET /api/v1/books?title=dune&page=1&limit=20

Response:
  - 200: []View with pagination metadata
*/
func (handler *Handler) browse(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	titleQuery := request.URL.Query().Get("title")

	books, meta, err := handler.bookService.Browse(request.Context(), titleQuery, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views := make([]View, 0, len(books))
	for _, item := range books {
		views = append(views, handler.bookService.View(item))
	}

	respond.Paginated(writer, views, meta)
}

/*
GetByID resolves a book by its catalogue ID.

GET /api/v1/books/id/{bookID}

Response:
  - 200: View
  - 404: ErrNotFound: Unknown book
*/
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")

	found, err := handler.bookService.GetByID(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.bookService.View(found))
}

/*
ListReviews returns the reviews embedded in a book.

GET /api/v1/books/id/{bookID}/reviews

Response:
  - 200: []Review
  - 404: ErrNotFound: Unknown book
*/
func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")

	found, err := handler.bookService.GetByID(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found.Reviews())
}

/*
GetByISBN resolves a book by its ISBN.

GET /api/v1/books/isbn/{isbn}

Response:
  - 200: View
  - 404: ErrNotFound: Unknown ISBN
*/
func (handler *Handler) getByISBN(writer http.ResponseWriter, request *http.Request) {
	isbn := requestutil.Param(request, "isbn")

	found, err := handler.bookService.GetByISBN(request.Context(), isbn)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.bookService.View(found))
}

/*
Create catalogues a new book.

POST /api/v1/books

Request:
  - Body: createRequest (Title, Description, ISBN, CoverURL, Publisher, Pages)

Response:
  - 201: View: Catalogued book
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: ISBN already catalogued
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.bookService.Create(request.Context(), CreateInput{
		Title:         input.Title,
		OriginalTitle: input.OriginalTitle,
		Description:   input.Description,
		ISBN:          input.ISBN,
		CoverURL:      input.CoverURL,
		Publisher:     input.Publisher,
		Pages:         input.Pages,
		PublishedAt:   input.PublishedAt,
		CreatedBy:     userID,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, handler.bookService.View(created))
}

/*
Update applies a partial metadata update.

PATCH /api/v1/books/id/{bookID}

Description: Only the fields present in the payload change; each goes
through the aggregate's guarded setter.

Request:
  - Body: updateRequest (any subset of fields)

Response:
  - 200: View: Updated book
  - 404: ErrNotFound: Unknown book
  - 409: ErrConflict: Concurrent modification or duplicate ISBN
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	updated, err := handler.bookService.Update(request.Context(), bookID, UpdateInput{
		Title:         input.Title,
		OriginalTitle: input.OriginalTitle,
		Description:   input.Description,
		ISBN:          input.ISBN,
		CoverURL:      input.CoverURL,
		Publisher:     input.Publisher,
		Pages:         input.Pages,
		PublishedAt:   input.PublishedAt,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.bookService.View(updated))
}

/*
Delete removes a book from the catalogue.

DELETE /api/v1/books/id/{bookID}

Response:
  - 204: No Content: Book removed
  - 404: ErrNotFound: Unknown book
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")

	if err := handler.bookService.Delete(request.Context(), bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
AddAuthor links an author record to a book.

POST /api/v1/books/id/{bookID}/authors

Request:
  - Body: addAuthorRequest (AuthorID)

Response:
  - 200: View: Updated book
  - 404: ErrNotFound: Unknown book or author
  - 409: ErrConflict: Author already linked
*/
func (handler *Handler) addAuthor(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")

	var input addAuthorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldAuthorID, input.AuthorID).UUID(FieldAuthorID, input.AuthorID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.bookService.AddAuthor(request.Context(), bookID, input.AuthorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.bookService.View(updated))
}

/*
RemoveAuthor unlinks an author record from a book.

DELETE /api/v1/books/id/{bookID}/authors/{authorID}

Response:
  - 200: View: Updated book
  - 404: ErrNotFound: Unknown book or unlinked author
*/
func (handler *Handler) removeAuthor(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")
	authorID := requestutil.Param(request, "authorID")

	updated, err := handler.bookService.RemoveAuthor(request.Context(), bookID, authorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.bookService.View(updated))
}

/*
AddReview embeds the caller's review into a book.

POST /api/v1/books/id/{bookID}/reviews

Request:
  - Body: reviewRequest (Rating 1-5, Comment)

Response:
  - 200: View: Updated book with refreshed rating
  - 401: ErrUnauthorized: Authentication required
  - 409: ErrConflict: Caller has already reviewed this book
*/
func (handler *Handler) addReview(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	updated, err := handler.bookService.AddReview(request.Context(), bookID, userID, input.Rating, input.Comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.bookService.View(updated))
}

/*
UpdateReview replaces the caller's review on a book.

PUT /api/v1/books/id/{bookID}/reviews

Request:
  - Body: reviewRequest (Rating 1-5, Comment)

Response:
  - 200: View: Updated book with refreshed rating
  - 404: ErrNotFound: Caller has not reviewed this book
*/
func (handler *Handler) updateReview(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	updated, err := handler.bookService.UpdateReview(request.Context(), bookID, userID, input.Rating, input.Comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.bookService.View(updated))
}

/*
DeleteReview removes the caller's review from a book.

DELETE /api/v1/books/id/{bookID}/reviews

Response:
  - 200: View: Updated book with refreshed rating
  - 404: ErrNotFound: Caller has not reviewed this book
*/
func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.Param(request, "bookID")

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.bookService.DeleteReview(request.Context(), bookID, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.bookService.View(updated))
}
