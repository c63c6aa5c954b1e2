// Copyright (c) 2026 Shelfy. All rights reserved.

/*
Book application service.

Architecture:

  - Service: Orchestrates catalogue use cases against the aggregate.
  - Repository: Abstracted persistence for the whole aggregate.
  - AuthorDirectory: Cross-domain port used to verify association targets.

Every mutation follows the same shape: load the aggregate, capture its
modification timestamp as the concurrency token, mutate through the guarded
methods, and save. A racing writer surfaces as CONFLICT, never as silently
lost state.
*/
package book

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/ctxutil"
	"github.com/shelfy-app/shelfy/pkg/pagination"
	"github.com/shelfy-app/shelfy/pkg/uuidv7"
)

// Service implements catalogue use cases for books.
type Service struct {
	repository Repository
	authors    AuthorDirectory
	siteURL    string
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, authors AuthorDirectory, siteURL string) *Service {
	return &Service{
		repository: repository,
		authors:    authors,
		siteURL:    siteURL,
	}
}

// # Transport View

// View is the client-safe projection of a [Book], including the derived
// rating and the canonical site link.
type View struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title,omitempty"`
	Description   string    `json:"description"`
	ISBN          string    `json:"isbn"`
	CoverURL      string    `json:"cover_url"`
	Publisher     string    `json:"publisher"`
	Pages         int       `json:"pages"`
	PublishedAt   time.Time `json:"published_at"`
	CreatedBy     string    `json:"created_by"`
	AuthorIDs     []string  `json:"author_ids"`
	Reviews       []Review  `json:"reviews"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// View builds the transport representation of a book, stamping the canonical
// public link derived from the configured site URL.
func (service *Service) View(book *Book) View {
	return View{
		ID:            book.ID(),
		Title:         book.Title(),
		OriginalTitle: book.OriginalTitle(),
		Description:   book.Description(),
		ISBN:          book.ISBN(),
		CoverURL:      book.CoverURL(),
		Publisher:     book.Publisher(),
		Pages:         book.Pages(),
		PublishedAt:   book.PublishedAt(),
		CreatedBy:     book.CreatedBy(),
		AuthorIDs:     book.AuthorIDs(),
		Reviews:       book.Reviews(),
		Rating:        book.Rating(),
		ReviewCount:   book.ReviewCount(),
		URL:           fmt.Sprintf("%s/book/%s", service.siteURL, book.ID()),
		CreatedAt:     book.CreatedAt(),
		UpdatedAt:     book.UpdatedAt(),
	}
}

// # Cataloguing Flow

// CreateInput holds the data required to catalogue a new book.
type CreateInput struct {
	Title         string
	OriginalTitle string
	Description   string
	ISBN          string
	CoverURL      string
	Publisher     string
	Pages         int
	PublishedAt   time.Time

	// CreatedBy is the authenticated cataloguer's user ID.
	CreatedBy string
}

/*
Create validates and persists a brand new book.

Description: Checks ISBN uniqueness up front for a client-friendly message;
the unique index on isbn closes the race behind it.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Book: Created aggregate
  - error: CONFLICT on a duplicate ISBN, VALIDATION_ERROR, or storage errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Book, error) {

	// Verify ISBN uniqueness. Return a client-safe Conflict error.
	_, err := service.repository.GetByISBN(context, input.ISBN)
	if err == nil {
		return nil, apperr.Conflict("A book with this ISBN is already catalogued")
	}

	// Time-sortable ID to prevent PG index fragmentation.
	created, err := New(
		uuidv7.New(),
		input.Title,
		input.OriginalTitle,
		input.Description,
		input.ISBN,
		input.CoverURL,
		input.Publisher,
		input.Pages,
		input.PublishedAt,
		input.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := service.repository.Create(context, created); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "book_created",
		slog.String("book_id", created.ID()),
		slog.String("isbn", created.ISBN()),
	)

	return created, nil
}

// # Resolution

// GetByID returns the fully hydrated book with the given ID.
func (service *Service) GetByID(context context.Context, id string) (*Book, error) {
	return service.repository.GetByID(context, id)
}

// GetByISBN returns the fully hydrated book with the given ISBN.
func (service *Service) GetByISBN(context context.Context, isbn string) (*Book, error) {
	return service.repository.GetByISBN(context, isbn)
}

/*
Browse returns a page of books, optionally filtered by title substring.

Parameters:
  - context: context.Context
  - titleQuery: string (empty matches everything)
  - params: pagination.Params

Returns:
  - []*Book: Page of aggregates
  - pagination.Meta: Page metadata
  - error: Storage failures
*/
func (service *Service) Browse(context context.Context, titleQuery string, params pagination.Params) ([]*Book, pagination.Meta, error) {

	books, total, err := service.repository.Browse(context, titleQuery, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return books, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// # Metadata Updates

// UpdateInput carries a partial metadata update. Nil fields are untouched.
type UpdateInput struct {
	Title         *string
	OriginalTitle *string
	Description   *string
	ISBN          *string
	CoverURL      *string
	Publisher     *string
	Pages         *int
	PublishedAt   *time.Time
}

/*
Update applies a partial metadata update to a book.

Description: Loads the aggregate, captures the concurrency token, applies
each provided field through its guarded setter, and saves. A change of ISBN
is checked against the catalogue first.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *Book: Updated aggregate
  - error: NOT_FOUND, VALIDATION_ERROR, CONFLICT, or storage failures
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Book, error) {

	current, err := service.repository.GetByID(context, id)
	if err != nil {
		return nil, err
	}
	token := current.UpdatedAt()

	if input.ISBN != nil && *input.ISBN != current.ISBN() {
		if _, isbnErr := service.repository.GetByISBN(context, *input.ISBN); isbnErr == nil {
			return nil, apperr.Conflict("A book with this ISBN is already catalogued")
		}
		if err := current.SetISBN(*input.ISBN); err != nil {
			return nil, err
		}
	}

	if input.Title != nil {
		if err := current.SetTitle(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.OriginalTitle != nil {
		current.SetOriginalTitle(*input.OriginalTitle)
	}
	if input.Description != nil {
		if err := current.SetDescription(*input.Description); err != nil {
			return nil, err
		}
	}
	if input.CoverURL != nil {
		if err := current.SetCover(*input.CoverURL); err != nil {
			return nil, err
		}
	}
	if input.Publisher != nil {
		if err := current.SetPublisher(*input.Publisher); err != nil {
			return nil, err
		}
	}
	if input.Pages != nil {
		if err := current.SetPages(*input.Pages); err != nil {
			return nil, err
		}
	}
	if input.PublishedAt != nil {
		current.SetPublishedAt(*input.PublishedAt)
	}

	if err := service.repository.Update(context, current, token); err != nil {
		return nil, err
	}

	return current, nil
}

/*
Delete permanently removes a book from the catalogue.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NOT_FOUND or storage failures
*/
func (service *Service) Delete(context context.Context, id string) error {

	if err := service.repository.Delete(context, id); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "book_deleted",
		slog.String("book_id", id),
	)

	return nil
}

// # Author Associations

/*
AddAuthor links an existing author record to a book.

Description: The author must exist in the catalogue before the association
is accepted; linking the same author twice is a CONFLICT.

Parameters:
  - context: context.Context
  - bookID: string
  - authorID: string

Returns:
  - *Book: Updated aggregate
  - error: NOT_FOUND, CONFLICT, or storage failures
*/
func (service *Service) AddAuthor(context context.Context, bookID, authorID string) (*Book, error) {

	exists, err := service.authors.Exists(context, authorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Author")
	}

	current, err := service.repository.GetByID(context, bookID)
	if err != nil {
		return nil, err
	}
	token := current.UpdatedAt()

	if err := current.AddAuthor(authorID); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, current, token); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "book_author_linked",
		slog.String("book_id", bookID),
		slog.String("author_id", authorID),
	)

	return current, nil
}

/*
RemoveAuthor unlinks an author record from a book.

Parameters:
  - context: context.Context
  - bookID: string
  - authorID: string

Returns:
  - *Book: Updated aggregate
  - error: NOT_FOUND or storage failures
*/
func (service *Service) RemoveAuthor(context context.Context, bookID, authorID string) (*Book, error) {

	current, err := service.repository.GetByID(context, bookID)
	if err != nil {
		return nil, err
	}
	token := current.UpdatedAt()

	if err := current.RemoveAuthor(authorID); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, current, token); err != nil {
		return nil, err
	}

	return current, nil
}

// # Review Management

/*
AddReview embeds a reader's review into a book.

Parameters:
  - context: context.Context
  - bookID: string
  - userID: string
  - rating: int (1 to 5)
  - comment: string

Returns:
  - *Book: Updated aggregate
  - error: NOT_FOUND, CONFLICT (already reviewed), VALIDATION_ERROR, or storage failures
*/
func (service *Service) AddReview(context context.Context, bookID, userID string, rating int, comment string) (*Book, error) {

	review, err := NewReview(userID, rating, comment)
	if err != nil {
		return nil, err
	}

	current, err := service.repository.GetByID(context, bookID)
	if err != nil {
		return nil, err
	}
	token := current.UpdatedAt()

	if err := current.AddReview(review); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, current, token); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "book_review_added",
		slog.String("book_id", bookID),
		slog.String("user_id", userID),
		slog.Int("rating", rating),
	)

	return current, nil
}

/*
UpdateReview replaces the caller's existing review on a book.

Description: Modelled as delete-then-add on the aggregate, so a replacement
of a review that was never written is NOT_FOUND.

Parameters:
  - context: context.Context
  - bookID: string
  - userID: string
  - rating: int (1 to 5)
  - comment: string

Returns:
  - *Book: Updated aggregate
  - error: NOT_FOUND, VALIDATION_ERROR, or storage failures
*/
func (service *Service) UpdateReview(context context.Context, bookID, userID string, rating int, comment string) (*Book, error) {

	review, err := NewReview(userID, rating, comment)
	if err != nil {
		return nil, err
	}

	current, err := service.repository.GetByID(context, bookID)
	if err != nil {
		return nil, err
	}
	token := current.UpdatedAt()

	if err := current.DeleteReview(userID); err != nil {
		return nil, err
	}
	if err := current.AddReview(review); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, current, token); err != nil {
		return nil, err
	}

	return current, nil
}

/*
DeleteReview removes the caller's review from a book.

Parameters:
  - context: context.Context
  - bookID: string
  - userID: string

Returns:
  - *Book: Updated aggregate
  - error: NOT_FOUND or storage failures
*/
func (service *Service) DeleteReview(context context.Context, bookID, userID string) (*Book, error) {

	current, err := service.repository.GetByID(context, bookID)
	if err != nil {
		return nil, err
	}
	token := current.UpdatedAt()

	if err := current.DeleteReview(userID); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, current, token); err != nil {
		return nil, err
	}

	return current, nil
}
