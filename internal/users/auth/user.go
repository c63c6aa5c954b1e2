// Copyright (c) 2026 Shelfy. All rights reserved.

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session) and logic for credential
lifecycle, authentication, and account management.

# Architecture

This layer is the "Truth" of the system. The [User] aggregate has no external
dependencies beyond the security ports it consumes, and encapsulates every
business rule related to identity: password policy, salted hashing, and
credential rotation.
*/
package auth

import (
	"crypto/subtle"
	"time"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/sec"
	"github.com/shelfy-app/shelfy/internal/platform/validate"
)

// # Security Ports

// Hasher is the credential hashing contract consumed by the [User] aggregate.
//
// Hash must be deterministic: identical (password, salt) pairs always yield
// an identical digest. Implemented by [sec.Argon2Hasher].
type Hasher interface {

	// GenerateSalt returns a fresh cryptographically random salt.
	GenerateSalt() ([]byte, error)

	// Hash derives the credential digest for the given password and salt.
	Hash(password string, salt []byte) []byte
}

// # User Aggregate

// User represents a registered member of the Shelfy platform.
//
// All fields are unexported: the aggregate can only be mutated through its
// methods, each of which validates its input before changing state. Password
// material (hash and salt) never leaves the aggregate except through
// [User.Snapshot], which exists solely for the persistence layer.
type User struct {
	id           string
	email        string
	username     string
	passwordHash []byte
	salt         []byte
	role         sec.UserRole
	avatarURL    string
	createdAt    time.Time
	updatedAt    time.Time
}

/*
NewUser creates a fully validated user with freshly hashed credentials.

Description: Enforces the account policy (email format, username length,
password strength), generates a unique salt, and derives the password hash
through the injected [Hasher].

Parameters:
  - id: string (UUIDv7)
  - email: string
  - username: string
  - password: string (plain text, never stored)
  - role: sec.UserRole
  - avatarURL: string
  - hasher: Hasher

Returns:
  - *User: Fully initialized aggregate
  - error: VALIDATION_ERROR on policy violations, internal errors on entropy failure
*/
func NewUser(id, email, username, password string, role sec.UserRole, avatarURL string, hasher Hasher) (*User, error) {

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldUsername, username).
		MinLen(FieldUsername, username, 3).
		MaxLen(FieldUsername, username, 30).
		Required(FieldPassword, password).
		Password(FieldPassword, password).
		Custom(FieldRole, !role.IsValid(), "Unknown role")

	if avatarURL != "" {
		validator.ImageURL(FieldAvatarURL, avatarURL)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	salt, err := hasher.GenerateSalt()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now()
	return &User{
		id:           id,
		email:        email,
		username:     username,
		passwordHash: hasher.Hash(password, salt),
		salt:         salt,
		role:         role,
		avatarURL:    avatarURL,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// # Read Accessors

func (user *User) ID() string          { return user.id }
func (user *User) Email() string       { return user.email }
func (user *User) Username() string    { return user.username }
func (user *User) Role() sec.UserRole  { return user.role }
func (user *User) AvatarURL() string   { return user.avatarURL }
func (user *User) CreatedAt() time.Time { return user.createdAt }
func (user *User) UpdatedAt() time.Time { return user.updatedAt }

// # Credential Lifecycle

/*
VerifyLogin checks a password attempt against the stored credentials.

Description: Re-derives the hash with the stored salt and compares it to the
stored digest in constant time. The boolean result carries no detail about
which part of the comparison failed.

Parameters:
  - password: string
  - hasher: Hasher

Returns:
  - bool: true only when the password matches
*/
func (user *User) VerifyLogin(password string, hasher Hasher) bool {
	attempt := hasher.Hash(password, user.salt)
	return subtle.ConstantTimeCompare(attempt, user.passwordHash) == 1
}

/*
ChangePassword rotates the user's credentials.

Description: Verifies the current password, enforces the password policy on
the replacement, and re-derives the hash with a brand-new salt so no two
password generations ever share one.

Parameters:
  - currentPassword: string
  - newPassword: string
  - hasher: Hasher

Returns:
  - error: UNAUTHORIZED on a wrong current password, VALIDATION_ERROR on a weak replacement
*/
func (user *User) ChangePassword(currentPassword, newPassword string, hasher Hasher) error {

	if !user.VerifyLogin(currentPassword, hasher) {
		return apperr.Unauthorized("Invalid credentials")
	}

	validator := &validate.Validator{}
	validator.Required(FieldNewPassword, newPassword).
		Password(FieldNewPassword, newPassword)
	if err := validator.Err(); err != nil {
		return err
	}

	salt, err := hasher.GenerateSalt()
	if err != nil {
		return apperr.Internal(err)
	}

	user.salt = salt
	user.passwordHash = hasher.Hash(newPassword, salt)
	user.touch()
	return nil
}

// # Profile Mutations

// SetAvatar replaces the avatar image URL after validating its format.
func (user *User) SetAvatar(url string) error {
	validator := &validate.Validator{}
	validator.Required(FieldAvatarURL, url).ImageURL(FieldAvatarURL, url)
	if err := validator.Err(); err != nil {
		return err
	}

	user.avatarURL = url
	user.touch()
	return nil
}

// SetRole changes the authorization level of the account.
func (user *User) SetRole(role sec.UserRole) error {
	if !role.IsValid() {
		return apperr.ValidationError("Unknown role")
	}

	user.role = role
	user.touch()
	return nil
}

// touch refreshes the modification timestamp after a successful mutation.
func (user *User) touch() {
	user.updatedAt = time.Now()
}

// # Persistence Boundary

// Snapshot is the flat, storage-ready representation of a [User].
//
// It exists exclusively for the repository layer; handing a Snapshot to any
// other consumer would leak password material.
type Snapshot struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	Salt         []byte
	Role         sec.UserRole
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot exports the aggregate state for persistence.
func (user *User) Snapshot() Snapshot {
	return Snapshot{
		ID:           user.id,
		Email:        user.email,
		Username:     user.username,
		PasswordHash: user.passwordHash,
		Salt:         user.salt,
		Role:         user.role,
		AvatarURL:    user.avatarURL,
		CreatedAt:    user.createdAt,
		UpdatedAt:    user.updatedAt,
	}
}

// FromSnapshot rehydrates an aggregate from stored state without re-running
// creation-time validation.
func FromSnapshot(snapshot Snapshot) *User {
	return &User{
		id:           snapshot.ID,
		email:        snapshot.Email,
		username:     snapshot.Username,
		passwordHash: snapshot.PasswordHash,
		salt:         snapshot.Salt,
		role:         snapshot.Role,
		avatarURL:    snapshot.AvatarURL,
		createdAt:    snapshot.CreatedAt,
		updatedAt:    snapshot.UpdatedAt,
	}
}

// # Transport View

// Profile is the client-safe projection of a [User]. It never carries
// password material.
type Profile struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Username  string       `json:"username"`
	Role      sec.UserRole `json:"role"`
	AvatarURL string       `json:"avatar_url,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Profile returns the transport representation of the user.
func (user *User) Profile() Profile {
	return Profile{
		ID:        user.id,
		Email:     user.email,
		Username:  user.username,
		Role:      user.role,
		AvatarURL: user.avatarURL,
		CreatedAt: user.createdAt,
		UpdatedAt: user.updatedAt,
	}
}

// # Session Entity

// Session represents an active refresh-token session tracked in Redis.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldRole            = "role"
	FieldAvatarURL       = "avatar_url"
	FieldLogin           = "login"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
)
