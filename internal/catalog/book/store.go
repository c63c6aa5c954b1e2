// Copyright (c) 2026 Shelfy. All rights reserved.

package book

import (
	"context"
	"time"

	"github.com/shelfy-app/shelfy/pkg/pagination"
)

// # Book Data Access

// Repository defines the data access contract for book aggregates.
//
// The aggregate is persisted as a whole: the book row, its author links, and
// its embedded reviews load and save together, never piecemeal.
type Repository interface {

	/*
		Create persists a brand-new book aggregate.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: CONFLICT on a duplicate ISBN, or persistence failures
	*/
	Create(context context.Context, book *Book) error

	/*
		GetByID returns the fully hydrated aggregate with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Book: Hydrated aggregate (authors and reviews included)
		  - error: NOT_FOUND or retrieval failures
	*/
	GetByID(context context.Context, id string) (*Book, error)

	/*
		GetByISBN returns the fully hydrated aggregate with the given ISBN.

		Parameters:
		  - context: context.Context
		  - isbn: string

		Returns:
		  - *Book: Hydrated aggregate (authors and reviews included)
		  - error: NOT_FOUND or retrieval failures
	*/
	GetByISBN(context context.Context, isbn string) (*Book, error)

	/*
		Browse returns a page of aggregates, optionally filtered by a
		case-insensitive title substring.

		Parameters:
		  - context: context.Context
		  - titleQuery: string (empty matches everything)
		  - params: pagination.Params

		Returns:
		  - []*Book: Page of hydrated aggregates
		  - int: Total match count
		  - error: Retrieval failures
	*/
	Browse(context context.Context, titleQuery string, params pagination.Params) ([]*Book, int, error)

	/*
		Update replaces the stored aggregate state under optimistic concurrency.

		Description: expectedUpdatedAt is the modification timestamp the caller
		loaded before mutating. A mismatch means another writer got there
		first and surfaces as CONFLICT.

		Parameters:
		  - context: context.Context
		  - book: *Book
		  - expectedUpdatedAt: time.Time

		Returns:
		  - error: CONFLICT on a concurrent write, NOT_FOUND, or persistence failures
	*/
	Update(context context.Context, book *Book, expectedUpdatedAt time.Time) error

	/*
		Delete permanently removes the aggregate with the given ID, including
		its author links and reviews.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: NOT_FOUND when no row matched, or persistence failures
	*/
	Delete(context context.Context, id string) error
}

// # Cross-Domain Ports

// AuthorDirectory is the minimal author lookup the book service needs to
// verify an association target exists. Implemented by the author repository.
type AuthorDirectory interface {

	// Exists reports whether an author record with the given ID exists.
	Exists(context context.Context, authorID string) (bool, error)
}
