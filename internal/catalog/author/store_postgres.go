// Copyright (c) 2026 Shelfy. All rights reserved.

package author

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const authorColumns = `id, firstname, lastname, description, imageurl, dateofbirth, dateofdeath, birthplace, website, source, createdby, createdat, updatedat`

func scanAuthor(row pgx.Row) (*Author, error) {
	a := &Author{}
	err := row.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Description, &a.ImageURL,
		&a.DateOfBirth, &a.DateOfDeath, &a.BirthPlace, &a.Website, &a.Source,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (repository *PostgresRepository) ListAuthors(context context.Context, f Filter, limit, offset int) ([]*Author, int, error) {
	pattern := "%" + f.Query + "%"

	const countQuery = `
		SELECT count(*) FROM catalog.author
		WHERE ($1 = '%%' OR firstname ILIKE $1 OR lastname ILIKE $1)`

	var total int
	if err := repository.db.QueryRow(context, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_authors")
	}

	const query = `
		SELECT ` + authorColumns + `
		FROM catalog.author
		WHERE ($1 = '%%' OR firstname ILIKE $1 OR lastname ILIKE $1)
		ORDER BY lastname ASC, firstname ASC
		LIMIT $2 OFFSET $3`

	rows, err := repository.db.Query(context, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_authors")
	}
	defer rows.Close()

	var authors []*Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_author")
		}
		authors = append(authors, a)
	}

	return authors, total, rows.Err()
}

func (repository *PostgresRepository) GetAuthor(context context.Context, id string) (*Author, error) {
	const query = `
		SELECT ` + authorColumns + `
		FROM catalog.author
		WHERE id = $1`

	a, err := scanAuthor(repository.db.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Author")
		}
		return nil, dberr.Wrap(err, "get_author")
	}

	return a, nil
}

func (repository *PostgresRepository) CreateAuthor(context context.Context, a *Author) error {
	const query = `
		INSERT INTO catalog.author (
			id, firstname, lastname, description, imageurl, dateofbirth, dateofdeath,
			birthplace, website, source, createdby, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING createdat, updatedat`

	err := repository.db.QueryRow(context, query,
		a.ID, a.FirstName, a.LastName, a.Description, a.ImageURL,
		a.DateOfBirth, a.DateOfDeath, a.BirthPlace, a.Website, a.Source,
		a.CreatedBy,
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	return dberr.Wrap(err, "create_author")
}

func (repository *PostgresRepository) UpdateAuthor(context context.Context, a *Author) error {
	const query = `
		UPDATE catalog.author
		SET firstname = $2, lastname = $3, description = $4, imageurl = $5,
		    dateofbirth = $6, dateofdeath = $7, birthplace = $8, website = $9,
		    source = $10, updatedat = $11
		WHERE id = $1
		RETURNING updatedat`

	err := repository.db.QueryRow(context, query,
		a.ID, a.FirstName, a.LastName, a.Description, a.ImageURL,
		a.DateOfBirth, a.DateOfDeath, a.BirthPlace, a.Website, a.Source,
		time.Now(),
	).Scan(&a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Author")
	}
	return dberr.Wrap(err, "update_author")
}

func (repository *PostgresRepository) DeleteAuthor(context context.Context, id string) error {

	// Associations in catalog.bookauthor are removed by the FK cascade.
	cmd, err := repository.db.Exec(context, `DELETE FROM catalog.author WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "delete_author")
	}

	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Author")
	}
	return nil
}

func (repository *PostgresRepository) Exists(context context.Context, id string) (bool, error) {
	var exists bool
	err := repository.db.QueryRow(context,
		`SELECT EXISTS (SELECT 1 FROM catalog.author WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "author_exists")
	}
	return exists, nil
}
