// Copyright (c) 2026 Shelfy. All rights reserved.

/*
Package book defines the central aggregate of the Shelfy catalogue.

It manages the lifecycle of a catalogued book: descriptive metadata, author
associations, embedded reader reviews, and the rating derived from them.

Core Responsibility:

  - Catalogue: Title, description, ISBN, cover, publisher, and page metadata.
  - Associations: Links to author records, one review per reader.
  - Analytics: The aggregate rating is always computed from live review data.

This package acts as the source of truth for all book-related business rules.
*/
package book

import (
	"math"
	"time"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/validate"
)

// Description length bounds, in Unicode characters (inclusive).
const (
	MinDescriptionLength = 15
	MaxDescriptionLength = 500

	// ISBNLength is the fixed character count of an ISBN-13.
	ISBNLength = 13

	MaxTitleLength = 200
)

// # Book Aggregate

// Book is the central aggregate of the Shelfy catalogue.
//
// All fields are unexported: every mutation flows through a guarded setter
// that validates its input, so a hydrated Book is always in a consistent
// state. Collection accessors return copies; callers can never reach the
// underlying slices.
type Book struct {
	id            string
	title         string
	originalTitle string
	description   string
	isbn          string
	coverURL      string
	publisher     string
	pages         int
	publishedAt   time.Time
	createdBy     string
	authorIDs     []string
	reviews       []Review
	createdAt     time.Time
	updatedAt     time.Time
}

/*
New creates a fully validated book.

Description: Runs every field through the same guarded setters used for
later mutations, accumulating all violations into a single VALIDATION_ERROR.

Parameters:
  - id: string (UUIDv7)
  - title: string
  - originalTitle: string (optional, title in the original language)
  - description: string (15 to 500 characters)
  - isbn: string (exactly 13 characters)
  - coverURL: string (http(s) URL ending in .jpg, .gif or .png)
  - publisher: string
  - pages: int (greater than zero)
  - publishedAt: time.Time (original publication date)
  - createdBy: string (ID of the cataloguing user)

Returns:
  - *Book: Fully initialized aggregate
  - error: VALIDATION_ERROR listing every violated rule
*/
func New(id, title, originalTitle, description, isbn, coverURL, publisher string, pages int, publishedAt time.Time, createdBy string) (*Book, error) {

	validator := &validate.Validator{}
	validateTitle(validator, title)
	validateDescription(validator, description)
	validateISBN(validator, isbn)
	validateCover(validator, coverURL)
	validator.Required(FieldPublisher, publisher)
	validator.Positive(FieldPages, pages)
	validator.Required(FieldUserID, createdBy)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Book{
		id:            id,
		title:         title,
		originalTitle: originalTitle,
		description:   description,
		isbn:          isbn,
		coverURL:      coverURL,
		publisher:     publisher,
		pages:         pages,
		publishedAt:   publishedAt,
		createdBy:     createdBy,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// # Read Accessors

func (book *Book) ID() string            { return book.id }
func (book *Book) Title() string         { return book.title }
func (book *Book) OriginalTitle() string { return book.originalTitle }
func (book *Book) Description() string   { return book.description }
func (book *Book) ISBN() string          { return book.isbn }
func (book *Book) CoverURL() string      { return book.coverURL }
func (book *Book) Publisher() string     { return book.publisher }
func (book *Book) Pages() int            { return book.pages }

// PublishedAt is the book's original publication date, not a catalogue timestamp.
func (book *Book) PublishedAt() time.Time { return book.publishedAt }

// CreatedBy is the ID of the user who catalogued the book.
func (book *Book) CreatedBy() string     { return book.createdBy }
func (book *Book) CreatedAt() time.Time  { return book.createdAt }
func (book *Book) UpdatedAt() time.Time  { return book.updatedAt }

// AuthorIDs returns a copy of the associated author IDs.
func (book *Book) AuthorIDs() []string {
	ids := make([]string, len(book.authorIDs))
	copy(ids, book.authorIDs)
	return ids
}

// Reviews returns a copy of the embedded reviews.
func (book *Book) Reviews() []Review {
	reviews := make([]Review, len(book.reviews))
	copy(reviews, book.reviews)
	return reviews
}

// ReviewCount returns the number of embedded reviews.
func (book *Book) ReviewCount() int {
	return len(book.reviews)
}

// Rating returns the mean of all review ratings, rounded half away from zero
// to two decimal places. A book with no reviews has a rating of 0.
//
// The value is always derived from the live review set; it is never stored.
func (book *Book) Rating() float64 {
	if len(book.reviews) == 0 {
		return 0
	}

	var sum int
	for _, review := range book.reviews {
		sum += review.Rating
	}

	average := float64(sum) / float64(len(book.reviews))
	return math.Round(average*100) / 100
}

// # Guarded Setters

// SetTitle replaces the display title.
func (book *Book) SetTitle(title string) error {
	validator := &validate.Validator{}
	validateTitle(validator, title)
	if err := validator.Err(); err != nil {
		return err
	}

	book.title = title
	book.touch()
	return nil
}

// SetOriginalTitle replaces the title in the book's original language.
func (book *Book) SetOriginalTitle(originalTitle string) {
	book.originalTitle = originalTitle
	book.touch()
}

// SetPublishedAt replaces the original publication date.
func (book *Book) SetPublishedAt(publishedAt time.Time) {
	book.publishedAt = publishedAt
	book.touch()
}

// SetDescription replaces the description, enforcing the 15-500 character rule.
func (book *Book) SetDescription(description string) error {
	validator := &validate.Validator{}
	validateDescription(validator, description)
	if err := validator.Err(); err != nil {
		return err
	}

	book.description = description
	book.touch()
	return nil
}

// SetISBN replaces the ISBN, which must be exactly 13 characters.
func (book *Book) SetISBN(isbn string) error {
	validator := &validate.Validator{}
	validateISBN(validator, isbn)
	if err := validator.Err(); err != nil {
		return err
	}

	book.isbn = isbn
	book.touch()
	return nil
}

// SetCover replaces the cover image URL after validating its format.
func (book *Book) SetCover(coverURL string) error {
	validator := &validate.Validator{}
	validateCover(validator, coverURL)
	if err := validator.Err(); err != nil {
		return err
	}

	book.coverURL = coverURL
	book.touch()
	return nil
}

// SetPublisher replaces the publisher name.
func (book *Book) SetPublisher(publisher string) error {
	validator := &validate.Validator{}
	validator.Required(FieldPublisher, publisher)
	if err := validator.Err(); err != nil {
		return err
	}

	book.publisher = publisher
	book.touch()
	return nil
}

// SetPages replaces the page count, which must be positive.
func (book *Book) SetPages(pages int) error {
	validator := &validate.Validator{}
	validator.Positive(FieldPages, pages)
	if err := validator.Err(); err != nil {
		return err
	}

	book.pages = pages
	book.touch()
	return nil
}

// # Author Associations

// AddAuthor links an author record to the book. Linking the same author
// twice is a CONFLICT.
func (book *Book) AddAuthor(authorID string) error {
	for _, existing := range book.authorIDs {
		if existing == authorID {
			return apperr.Conflict("Author is already linked to this book")
		}
	}

	book.authorIDs = append(book.authorIDs, authorID)
	book.touch()
	return nil
}

// RemoveAuthor unlinks an author record. Removing an author that is not
// linked is NOT_FOUND.
func (book *Book) RemoveAuthor(authorID string) error {
	for index, existing := range book.authorIDs {
		if existing == authorID {
			book.authorIDs = append(book.authorIDs[:index], book.authorIDs[index+1:]...)
			book.touch()
			return nil
		}
	}

	return apperr.NotFound("Author association")
}

// # Review Management

// AddReview embeds a reader's review. Each user holds at most one review per
// book; a second review from the same user is a CONFLICT.
func (book *Book) AddReview(review Review) error {
	for _, existing := range book.reviews {
		if existing.UserID == review.UserID {
			return apperr.Conflict("User has already reviewed this book")
		}
	}

	book.reviews = append(book.reviews, review)
	book.touch()
	return nil
}

// DeleteReview removes the review written by the given user. Deleting a
// review that does not exist is NOT_FOUND.
func (book *Book) DeleteReview(userID string) error {
	for index, existing := range book.reviews {
		if existing.UserID == userID {
			book.reviews = append(book.reviews[:index], book.reviews[index+1:]...)
			book.touch()
			return nil
		}
	}

	return apperr.NotFound("Review")
}

// ReviewBy returns the review written by the given user, if any.
func (book *Book) ReviewBy(userID string) (Review, bool) {
	for _, existing := range book.reviews {
		if existing.UserID == userID {
			return existing, true
		}
	}
	return Review{}, false
}

// touch refreshes the modification timestamp after a successful mutation.
//
// The timestamp doubles as the optimistic concurrency token in the
// persistence layer, so every state change must pass through here.
func (book *Book) touch() {
	book.updatedAt = time.Now()
}

// # Validation Rules

func validateTitle(validator *validate.Validator, title string) {
	validator.Required(FieldTitle, title).MaxLen(FieldTitle, title, MaxTitleLength)
}

func validateDescription(validator *validate.Validator, description string) {
	validator.Required(FieldDescription, description).
		MinLen(FieldDescription, description, MinDescriptionLength).
		MaxLen(FieldDescription, description, MaxDescriptionLength)
}

func validateISBN(validator *validate.Validator, isbn string) {
	validator.Required(FieldISBN, isbn).ExactLen(FieldISBN, isbn, ISBNLength)
}

func validateCover(validator *validate.Validator, coverURL string) {
	validator.Required(FieldCover, coverURL).ImageURL(FieldCover, coverURL)
}

// # Persistence Boundary

// Snapshot is the flat, storage-ready representation of a [Book].
type Snapshot struct {
	ID            string
	Title         string
	OriginalTitle string
	Description   string
	ISBN          string
	CoverURL      string
	Publisher     string
	Pages         int
	PublishedAt   time.Time
	CreatedBy     string
	AuthorIDs     []string
	Reviews       []Review
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Snapshot exports the aggregate state for persistence.
func (book *Book) Snapshot() Snapshot {
	return Snapshot{
		ID:            book.id,
		Title:         book.title,
		OriginalTitle: book.originalTitle,
		Description:   book.description,
		ISBN:          book.isbn,
		CoverURL:      book.coverURL,
		Publisher:     book.publisher,
		Pages:         book.pages,
		PublishedAt:   book.publishedAt,
		CreatedBy:     book.createdBy,
		AuthorIDs:     book.AuthorIDs(),
		Reviews:       book.Reviews(),
		CreatedAt:     book.createdAt,
		UpdatedAt:     book.updatedAt,
	}
}

// FromSnapshot rehydrates an aggregate from stored state without re-running
// creation-time validation.
func FromSnapshot(snapshot Snapshot) *Book {
	return &Book{
		id:            snapshot.ID,
		title:         snapshot.Title,
		originalTitle: snapshot.OriginalTitle,
		description:   snapshot.Description,
		isbn:          snapshot.ISBN,
		coverURL:      snapshot.CoverURL,
		publisher:     snapshot.Publisher,
		pages:         snapshot.Pages,
		publishedAt:   snapshot.PublishedAt,
		createdBy:     snapshot.CreatedBy,
		authorIDs:     snapshot.AuthorIDs,
		reviews:       snapshot.Reviews,
		createdAt:     snapshot.CreatedAt,
		updatedAt:     snapshot.UpdatedAt,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the book domain.
const (
	FieldTitle         = "title"
	FieldOriginalTitle = "original_title"
	FieldDescription   = "description"
	FieldISBN          = "isbn"
	FieldCover         = "cover_url"
	FieldPublisher     = "publisher"
	FieldPages         = "pages"
	FieldPublishedAt   = "published_at"
	FieldAuthorID      = "author_id"
	FieldUserID        = "user_id"
	FieldRating        = "rating"
	FieldComment       = "comment"
)
