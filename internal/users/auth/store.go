// Copyright (c) 2026 Shelfy. All rights reserved.

package auth

import (
	"context"

	"github.com/shelfy-app/shelfy/pkg/pagination"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated aggregate
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated aggregate
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated aggregate
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Browse returns a page of accounts ordered by registration time.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*User: Page of aggregates
		  - int: Total account count
		  - error: Database retrieval failures
	*/
	Browse(context context.Context, params pagination.Params) ([]*User, int, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: CONFLICT on a duplicate email or username, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateCredentials persists a rotated password hash and salt.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	UpdateCredentials(context context.Context, user *User) error

	/*
		UpdateProfile persists changes to mutable profile fields (avatar, role).

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	UpdateProfile(context context.Context, user *User) error

	/*
		Delete permanently removes the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: NOT_FOUND when no row matched, or persistence failures
	*/
	Delete(context context.Context, id string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
//
// Sessions live in Redis under a TTL, so expiry needs no sweeper: a session
// that outlives its TTL simply stops resolving.
type SessionRepository interface {

	/*
		Create persists a new tracking session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the active session matching the given token hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: NOT_FOUND when absent or expired
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Revoke permanently invalidates the session with the given token hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, tokenHash string) error
}
