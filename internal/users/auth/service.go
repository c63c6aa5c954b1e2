// Copyright (c) 2026 Shelfy. All rights reserved.

/*
Package auth implements the core identity and access management layer.

It handles user registration, salted password hashing, login verification,
and session lifecycle management via JWT access tokens and Redis-backed
refresh sessions.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh).
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Sessions).
  - Security: Argon2id hashing and RSA-signed JWTs, injected through ports.

The package ensures that identity data remains consistent and secure
throughout the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/ctxutil"
	"github.com/shelfy-app/shelfy/internal/platform/sec"
	"github.com/shelfy-app/shelfy/pkg/pagination"
	"github.com/shelfy-app/shelfy/pkg/uuidv7"
)

// # Contracts & Types

// TokenIssuer defines the contract for generating signed access tokens.
// Implemented by [sec.TokenService].
type TokenIssuer interface {

	// IssueToken creates a signed, time-bounded access token for the user.
	IssueToken(userID string, role sec.UserRole) (*sec.IssuedToken, error)
}

// Service implements user authentication and account management use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenIssuer       TokenIssuer
	hasher            Hasher
	defaultAvatarURL  string
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokenIssuer TokenIssuer,
	hasher Hasher,
	defaultAvatarURL string,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenIssuer:       tokenIssuer,
		hasher:            hasher,
		defaultAvatarURL:  defaultAvatarURL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Checks identity uniqueness, delegates credential hashing to the
[User] aggregate, and assigns the configured default avatar.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created aggregate
  - error: CONFLICT (if identity exists), VALIDATION_ERROR, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict error.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Time-sortable ID to prevent PG index fragmentation. The aggregate
	// enforces the password policy and derives the salted hash itself.
	user, err := NewUser(
		uuidv7.New(),
		input.Email,
		input.Username,
		input.Password,
		sec.RoleUser,
		service.defaultAvatarURL,
		service.hasher,
	)
	if err != nil {
		return nil, err
	}

	// The unique indexes on email and username close the race between the
	// checks above and this insert: a concurrent duplicate maps to CONFLICT.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered",
		slog.String("user_id", user.ID()),
		slog.String("username", user.Username()),
	)

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login     string // Can be Username or Email
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity via constant-time password comparison and
initializes a new refresh session. Every failure path returns the same
generic message so the API never reveals whether an account exists.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - error: UNAUTHORIZED or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// Flexible login: look up by Email or Username
	user, err := service.userRepository.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(context, input.Login)
	}

	// Unknown account and wrong password share one message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	if !user.VerifyLogin(input.Password, service.hasher) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	session, err := service.establishSession(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_logged_in",
		slog.String("user_id", user.ID()),
	)

	return session, nil
}

/*
Logout permanently revokes the caller's refresh session.

Description: Idempotent; an already-gone session still counts as a successful
logout.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	tokenHash := sec.HashToken(refreshToken)

	// If the session is already gone or invalid, logout is still successful.
	if _, err := service.sessionRepository.FindByTokenHash(context, tokenHash); err != nil {
		return nil
	}

	if err := service.sessionRepository.Revoke(context, tokenHash); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the refresh token rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - error: UNAUTHORIZED or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// The token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(context, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	return service.establishSession(context, user, userAgent, ipAddress)
}

// establishSession issues an access token and persists a fresh refresh session.
func (service *Service) establishSession(context context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {

	accessToken, err := service.tokenIssuer.IssueToken(user.ID(), user.Role())
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_issue_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    user.ID(),
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken.Token,
		AccessTokenExpiresAt:  accessToken.ExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// # Credential Management

/*
ChangePassword allows an authenticated user to rotate their credentials.

Description: The aggregate verifies the current password and derives the new
hash with a fresh salt; the caller's active refresh session is revoked so the
new credentials take effect everywhere.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string
  - currentRefreshToken: string

Returns:
  - error: UNAUTHORIZED or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword, currentRefreshToken string) error {

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(currentPassword, newPassword, service.hasher); err != nil {
		return err
	}

	if err := service.userRepository.UpdateCredentials(context, user); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security side effect: force re-login by revoking the active session.
	if currentRefreshToken != "" {
		_ = service.sessionRepository.Revoke(context, sec.HashToken(currentRefreshToken))
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_password_changed",
		slog.String("user_id", userID),
	)

	return nil
}

// # Profile Management

/*
SetAvatar replaces the avatar image of an account.

Parameters:
  - context: context.Context
  - userID: string
  - avatarURL: string

Returns:
  - *User: Updated aggregate
  - error: VALIDATION_ERROR, NOT_FOUND, or storage failures
*/
func (service *Service) SetAvatar(context context.Context, userID, avatarURL string) (*User, error) {

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if err := user.SetAvatar(avatarURL); err != nil {
		return nil, err
	}

	if err := service.userRepository.UpdateProfile(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Account Resolution

// GetByID returns the account with the given ID.
func (service *Service) GetByID(context context.Context, id string) (*User, error) {
	return service.userRepository.FindByID(context, id)
}

// GetByUsername returns the account with the given username.
func (service *Service) GetByUsername(context context.Context, username string) (*User, error) {
	return service.userRepository.FindByUsername(context, username)
}

/*
Browse returns a page of registered accounts.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*User: Page of aggregates
  - pagination.Meta: Page metadata
  - error: Storage failures
*/
func (service *Service) Browse(context context.Context, params pagination.Params) ([]*User, pagination.Meta, error) {

	users, total, err := service.userRepository.Browse(context, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Delete permanently removes an account.

Description: Admin-only operation wired at the routing layer; reviews written
by the account are removed by the database cascade.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NOT_FOUND or storage failures
*/
func (service *Service) Delete(context context.Context, id string) error {

	if err := service.userRepository.Delete(context, id); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_deleted",
		slog.String("user_id", id),
	)

	return nil
}
