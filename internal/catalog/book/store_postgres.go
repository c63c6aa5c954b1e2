// Copyright (c) 2026 Shelfy. All rights reserved.

// PostgreSQL implementation of the book repository.
//
// # Aggregate Persistence
//
// A book spans three tables: catalog.book (the root row), catalog.bookauthor
// (author links), and catalog.review (embedded reviews). Every write replaces
// the aggregate as a whole inside one transaction, and the root row's
// updatedat column doubles as the optimistic concurrency token.
package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/dberr"
	"github.com/shelfy-app/shelfy/pkg/pagination"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the book Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const bookColumns = "id, title, originaltitle, description, isbn, coverurl, publisher, pages, publishedat, createdby, createdat, updatedat"

/*
Create persists a new book aggregate in a single transaction.

Description: Inserts the root row plus its author links; a duplicate ISBN
surfaces as CONFLICT via the unique index.

Parameters:
  - context: context.Context
  - book: *Book

Returns:
  - error: CONFLICT or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, book *Book) error {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "book_create_begin")
	}
	defer func() { _ = transaction.Rollback(context) }()

	const insertBook = `
		INSERT INTO catalog.book (
			id, title, originaltitle, description, isbn, coverurl, publisher, pages, publishedat, createdby, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	snapshot := book.Snapshot()
	_, err = transaction.Exec(context, insertBook,
		snapshot.ID,
		snapshot.Title,
		snapshot.OriginalTitle,
		snapshot.Description,
		snapshot.ISBN,
		snapshot.CoverURL,
		snapshot.Publisher,
		snapshot.Pages,
		snapshot.PublishedAt,
		snapshot.CreatedBy,
		snapshot.CreatedAt,
		snapshot.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "book_create")
	}

	if err := replaceAssociations(context, transaction, snapshot); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "book_create_commit")
	}

	return nil
}

/*
GetByID returns the fully hydrated aggregate with the given ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Book: Hydrated aggregate
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Book, error) {
	const query = `
		SELECT ` + bookColumns + `
		FROM catalog.book
		WHERE id = $1`

	return repository.getOne(context, query, id)
}

/*
GetByISBN returns the fully hydrated aggregate with the given ISBN.

Parameters:
  - context: context.Context
  - isbn: string

Returns:
  - *Book: Hydrated aggregate
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) GetByISBN(context context.Context, isbn string) (*Book, error) {
	const query = `
		SELECT ` + bookColumns + `
		FROM catalog.book
		WHERE isbn = $1`

	return repository.getOne(context, query, isbn)
}

// getOne resolves a single root row and hydrates its associations.
func (repository *PostgresRepository) getOne(context context.Context, query string, argument any) (*Book, error) {
	snapshot, err := scanBookRow(repository.pool.QueryRow(context, query, argument))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Book")
		}
		return nil, dberr.Wrap(err, "book_get")
	}

	if err := repository.hydrateAssociations(context, []*Snapshot{snapshot}); err != nil {
		return nil, err
	}

	return FromSnapshot(*snapshot), nil
}

/*
Browse returns a page of aggregates ordered by catalogue time (newest first).

Description: An empty titleQuery matches everything; otherwise the filter is
a case-insensitive substring match on the title.

Parameters:
  - context: context.Context
  - titleQuery: string
  - params: pagination.Params

Returns:
  - []*Book: Page of hydrated aggregates
  - int: Total match count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) Browse(context context.Context, titleQuery string, params pagination.Params) ([]*Book, int, error) {

	pattern := "%" + titleQuery + "%"

	const countQuery = `SELECT COUNT(*) FROM catalog.book WHERE ($1 = '%%' OR title ILIKE $1)`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "book_browse_count")
	}

	const query = `
		SELECT ` + bookColumns + `
		FROM catalog.book
		WHERE ($1 = '%%' OR title ILIKE $1)
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, pattern, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "book_browse")
	}
	defer rows.Close()

	snapshots := make([]*Snapshot, 0, params.Limit)
	for rows.Next() {
		snapshot, err := scanBookRow(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "book_browse_scan")
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "book_browse_rows")
	}

	if err := repository.hydrateAssociations(context, snapshots); err != nil {
		return nil, 0, err
	}

	books := make([]*Book, 0, len(snapshots))
	for _, snapshot := range snapshots {
		books = append(books, FromSnapshot(*snapshot))
	}

	return books, total, nil
}

/*
Update replaces the stored aggregate state under optimistic concurrency.

Description: The root row is updated only when its updatedat still equals
expectedUpdatedAt. On success the author links and reviews are rewritten
wholesale inside the same transaction.

Parameters:
  - context: context.Context
  - book: *Book
  - expectedUpdatedAt: time.Time

Returns:
  - error: CONFLICT on a concurrent write, NOT_FOUND, or persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, book *Book, expectedUpdatedAt time.Time) error {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "book_update_begin")
	}
	defer func() { _ = transaction.Rollback(context) }()

	const updateBook = `
		UPDATE catalog.book
		SET title = $3, originaltitle = $4, description = $5, isbn = $6,
		    coverurl = $7, publisher = $8, pages = $9, publishedat = $10, updatedat = $11
		WHERE id = $1 AND updatedat = $2`

	snapshot := book.Snapshot()
	tag, err := transaction.Exec(context, updateBook,
		snapshot.ID,
		expectedUpdatedAt,
		snapshot.Title,
		snapshot.OriginalTitle,
		snapshot.Description,
		snapshot.ISBN,
		snapshot.CoverURL,
		snapshot.Publisher,
		snapshot.Pages,
		snapshot.PublishedAt,
		snapshot.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "book_update")
	}

	// Zero rows means either the book is gone or another writer advanced
	// updatedat first. Disambiguate with an existence probe.
	if tag.RowsAffected() == 0 {
		var exists bool
		probe := transaction.QueryRow(context, "SELECT EXISTS (SELECT 1 FROM catalog.book WHERE id = $1)", snapshot.ID)
		if err := probe.Scan(&exists); err != nil {
			return dberr.Wrap(err, "book_update_probe")
		}
		if !exists {
			return apperr.NotFound("Book")
		}
		return apperr.Conflict("Book was modified by another request")
	}

	if _, err := transaction.Exec(context, "DELETE FROM catalog.bookauthor WHERE bookid = $1", snapshot.ID); err != nil {
		return dberr.Wrap(err, "book_update_clear_authors")
	}
	if _, err := transaction.Exec(context, "DELETE FROM catalog.review WHERE bookid = $1", snapshot.ID); err != nil {
		return dberr.Wrap(err, "book_update_clear_reviews")
	}

	if err := replaceAssociations(context, transaction, snapshot); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "book_update_commit")
	}

	return nil
}

/*
Delete permanently removes a book by ID.

Description: Author links and reviews follow via the foreign key cascade.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NOT_FOUND when no row matched, or execution errors
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM catalog.book WHERE id = $1"

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "book_delete")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Book")
	}

	return nil
}

// # Row Hydration

// scanBookRow scans a root catalog.book row into a snapshot.
func scanBookRow(row pgx.Row) (*Snapshot, error) {
	snapshot := &Snapshot{}
	err := row.Scan(
		&snapshot.ID,
		&snapshot.Title,
		&snapshot.OriginalTitle,
		&snapshot.Description,
		&snapshot.ISBN,
		&snapshot.CoverURL,
		&snapshot.Publisher,
		&snapshot.Pages,
		&snapshot.PublishedAt,
		&snapshot.CreatedBy,
		&snapshot.CreatedAt,
		&snapshot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// hydrateAssociations loads author links and reviews for a batch of root rows.
func (repository *PostgresRepository) hydrateAssociations(context context.Context, snapshots []*Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	index := make(map[string]*Snapshot, len(snapshots))
	bookIDs := make([]string, 0, len(snapshots))
	for _, snapshot := range snapshots {
		index[snapshot.ID] = snapshot
		bookIDs = append(bookIDs, snapshot.ID)
	}

	const authorQuery = `
		SELECT bookid, authorid
		FROM catalog.bookauthor
		WHERE bookid = ANY($1)
		ORDER BY linkedat`

	authorRows, err := repository.pool.Query(context, authorQuery, bookIDs)
	if err != nil {
		return dberr.Wrap(err, "book_hydrate_authors")
	}
	defer authorRows.Close()

	for authorRows.Next() {
		var bookID, authorID string
		if err := authorRows.Scan(&bookID, &authorID); err != nil {
			return dberr.Wrap(err, "book_hydrate_authors_scan")
		}
		if snapshot, ok := index[bookID]; ok {
			snapshot.AuthorIDs = append(snapshot.AuthorIDs, authorID)
		}
	}
	if err := authorRows.Err(); err != nil {
		return dberr.Wrap(err, "book_hydrate_authors_rows")
	}

	const reviewQuery = `
		SELECT bookid, userid, rating, comment, createdat
		FROM catalog.review
		WHERE bookid = ANY($1)
		ORDER BY createdat`

	reviewRows, err := repository.pool.Query(context, reviewQuery, bookIDs)
	if err != nil {
		return dberr.Wrap(err, "book_hydrate_reviews")
	}
	defer reviewRows.Close()

	for reviewRows.Next() {
		var bookID string
		var review Review
		if err := reviewRows.Scan(&bookID, &review.UserID, &review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return dberr.Wrap(err, "book_hydrate_reviews_scan")
		}
		if snapshot, ok := index[bookID]; ok {
			snapshot.Reviews = append(snapshot.Reviews, review)
		}
	}
	if err := reviewRows.Err(); err != nil {
		return dberr.Wrap(err, "book_hydrate_reviews_rows")
	}

	return nil
}

// replaceAssociations inserts the snapshot's author links and reviews within
// the given transaction. Callers clear the previous rows first.
func replaceAssociations(context context.Context, transaction pgx.Tx, snapshot Snapshot) error {

	for position, authorID := range snapshot.AuthorIDs {
		const insertLink = `
			INSERT INTO catalog.bookauthor (bookid, authorid, linkedat)
			VALUES ($1, $2, $3)`

		// linkedat preserves association order across reloads.
		linkedAt := snapshot.UpdatedAt.Add(time.Duration(position) * time.Microsecond)
		if _, err := transaction.Exec(context, insertLink, snapshot.ID, authorID, linkedAt); err != nil {
			return dberr.Wrap(err, fmt.Sprintf("book_link_author_%s", authorID))
		}
	}

	for _, review := range snapshot.Reviews {
		const insertReview = `
			INSERT INTO catalog.review (bookid, userid, rating, comment, createdat)
			VALUES ($1, $2, $3, $4, $5)`

		if _, err := transaction.Exec(context, insertReview,
			snapshot.ID, review.UserID, review.Rating, review.Comment, review.CreatedAt,
		); err != nil {
			return dberr.Wrap(err, "book_insert_review")
		}
	}

	return nil
}
