// Copyright (c) 2026 Shelfy. All rights reserved.

// PostgreSQL implementations of the auth repositories.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, unique-constraint violations) are
// mapped to domain-friendly [apperr.AppError] values via [dberr.Wrap] so no
// storage detail leaks past this file. The unique indexes on email, username
// guarantee that even a racing check-then-insert resolves to CONFLICT.
package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/dberr"
	"github.com/shelfy-app/shelfy/pkg/pagination"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = "id, email, username, passwordhash, salt, role, avatarurl, createdat, updatedat"

// scanUser hydrates a [User] aggregate from a single database row.
func scanUser(row pgx.Row) (*User, error) {
	var snapshot Snapshot
	err := row.Scan(
		&snapshot.ID,
		&snapshot.Email,
		&snapshot.Username,
		&snapshot.PasswordHash,
		&snapshot.Salt,
		&snapshot.Role,
		&snapshot.AvatarURL,
		&snapshot.CreatedAt,
		&snapshot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return FromSnapshot(snapshot), nil
}

/*
Create persists a new user record into the users.account table.

Description: Serializes the aggregate through its snapshot; a duplicate email
or username surfaces as CONFLICT via the unique indexes.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: CONFLICT or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, username, passwordhash, salt, role, avatarurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	snapshot := user.Snapshot()
	_, err := repository.pool.Exec(context, query,
		snapshot.ID,
		snapshot.Email,
		snapshot.Username,
		snapshot.PasswordHash,
		snapshot.Salt,
		snapshot.Role,
		snapshot.AvatarURL,
		snapshot.CreatedAt,
		snapshot.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "user_create")
	}

	return nil
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated aggregate
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "user_find_by_id")
	}

	return user, nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated aggregate
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "user_find_by_email")
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated aggregate
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE username = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "user_find_by_username")
	}

	return user, nil
}

/*
Browse returns a page of accounts ordered by registration time (newest first).

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*User: Page of aggregates
  - int: Total account count
  - error: Database retrieval failures
*/
func (repository *PostgresUserRepository) Browse(context context.Context, params pagination.Params) ([]*User, int, error) {
	const countQuery = "SELECT COUNT(*) FROM users.account"

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "user_browse_count")
	}

	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "user_browse")
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "user_browse_scan")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "user_browse_rows")
	}

	return users, total, nil
}

/*
UpdateCredentials persists a rotated password hash and salt.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: NOT_FOUND when no row matched, or execution errors
*/
func (repository *PostgresUserRepository) UpdateCredentials(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, salt = $3, updatedat = $4
		WHERE id = $1`

	snapshot := user.Snapshot()
	tag, err := repository.pool.Exec(context, query,
		snapshot.ID,
		snapshot.PasswordHash,
		snapshot.Salt,
		snapshot.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "user_update_credentials")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
UpdateProfile persists changes to mutable profile fields.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: NOT_FOUND when no row matched, or execution errors
*/
func (repository *PostgresUserRepository) UpdateProfile(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET avatarurl = $2, role = $3, updatedat = $4
		WHERE id = $1`

	snapshot := user.Snapshot()
	tag, err := repository.pool.Exec(context, query,
		snapshot.ID,
		snapshot.AvatarURL,
		snapshot.Role,
		snapshot.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "user_update_profile")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
Delete permanently removes an account by ID.

Description: Reviews authored by the account are removed with it via the
foreign key cascade on catalog.review.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NOT_FOUND when no row matched, or execution errors
*/
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM users.account WHERE id = $1"

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "user_delete")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
