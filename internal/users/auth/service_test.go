// Copyright (c) 2026 Shelfy. All rights reserved.

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/sec"
	"github.com/shelfy-app/shelfy/internal/users/auth"
	"github.com/shelfy-app/shelfy/pkg/pagination"
)

// # In-Memory Fakes

type fakeUserRepository struct {
	users map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*auth.User)}
}

func (repo *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := repo.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Email() == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Username() == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) Browse(_ context.Context, params pagination.Params) ([]*auth.User, int, error) {
	users := make([]*auth.User, 0, len(repo.users))
	for _, user := range repo.users {
		users = append(users, user)
	}
	return users, len(users), nil
}

func (repo *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	for _, existing := range repo.users {
		if existing.Email() == user.Email() || existing.Username() == user.Username() {
			return apperr.Conflict("Resource already exists")
		}
	}
	repo.users[user.ID()] = user
	return nil
}

func (repo *fakeUserRepository) UpdateCredentials(_ context.Context, user *auth.User) error {
	if _, ok := repo.users[user.ID()]; !ok {
		return apperr.NotFound("User")
	}
	repo.users[user.ID()] = user
	return nil
}

func (repo *fakeUserRepository) UpdateProfile(_ context.Context, user *auth.User) error {
	if _, ok := repo.users[user.ID()]; !ok {
		return apperr.NotFound("User")
	}
	repo.users[user.ID()] = user
	return nil
}

func (repo *fakeUserRepository) Delete(_ context.Context, id string) error {
	if _, ok := repo.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repo.users, id)
	return nil
}

type fakeSessionRepository struct {
	sessions map[string]*auth.Session
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[string]*auth.Session)}
}

func (repo *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	repo.sessions[session.TokenHash] = session
	return nil
}

func (repo *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	if session, ok := repo.sessions[tokenHash]; ok {
		return session, nil
	}
	return nil, apperr.NotFound("Session")
}

func (repo *fakeSessionRepository) Revoke(_ context.Context, tokenHash string) error {
	delete(repo.sessions, tokenHash)
	return nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) IssueToken(userID string, role sec.UserRole) (*sec.IssuedToken, error) {
	return &sec.IssuedToken{
		Token:     "signed-token-" + userID,
		Role:      role,
		ExpiresAt: time.Now().Add(auth.AccessTokenTTL),
	}, nil
}

// newTestService wires a service against in-memory fakes.
func newTestService() (*auth.Service, *fakeUserRepository, *fakeSessionRepository) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	service := auth.NewService(
		users,
		sessions,
		fakeTokenIssuer{},
		sec.Argon2Hasher{},
		"https://static.shelfy.app/avatar/user/default.png",
	)
	return service, users, sessions
}

func register(t *testing.T, service *auth.Service) *auth.User {
	t.Helper()

	user, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    "reader@shelfy.app",
		Username: "bookworm",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	return user
}

// # Registration

/*
TestService_Register verifies enrollment: the default avatar is assigned, the
standard role is granted, and duplicate identities map to CONFLICT.
*/
func TestService_Register(t *testing.T) {
	service, _, _ := newTestService()

	user := register(t, service)
	assert.Equal(t, sec.RoleUser, user.Role())
	assert.Equal(t, "https://static.shelfy.app/avatar/user/default.png", user.AvatarURL())
	assert.NotEmpty(t, user.ID())

	// Duplicate email
	_, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    "reader@shelfy.app",
		Username: "someoneelse",
		Password: "sup3rsecret",
	})
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// Duplicate username
	_, err = service.Register(context.Background(), auth.RegisterInput{
		Email:    "other@shelfy.app",
		Username: "bookworm",
		Password: "sup3rsecret",
	})
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

// # Authentication

/*
TestService_Login verifies credential checks, the generic failure message,
and session establishment on success.
*/
func TestService_Login(t *testing.T) {
	service, _, sessions := newTestService()
	user := register(t, service)

	// 1. Login by email
	session, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "reader@shelfy.app",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "signed-token-"+user.ID(), session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Len(t, sessions.sessions, 1)

	// 2. Login by username
	_, err = service.Login(context.Background(), auth.LoginInput{
		Login:    "bookworm",
		Password: "sup3rsecret",
	})
	assert.NoError(t, err)

	// 3. Wrong password and unknown account share one generic message
	_, wrongPassErr := service.Login(context.Background(), auth.LoginInput{
		Login:    "reader@shelfy.app",
		Password: "wrongpass1",
	})
	_, unknownErr := service.Login(context.Background(), auth.LoginInput{
		Login:    "ghost@shelfy.app",
		Password: "sup3rsecret",
	})

	require.Error(t, wrongPassErr)
	require.Error(t, unknownErr)
	assert.Equal(t, wrongPassErr.Error(), unknownErr.Error())
	assert.True(t, apperr.IsCode(wrongPassErr, "UNAUTHORIZED"))
}

/*
TestService_RefreshSession verifies refresh token rotation: the old token is
revoked and cannot be replayed.
*/
func TestService_RefreshSession(t *testing.T) {
	service, _, _ := newTestService()
	register(t, service)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "bookworm",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	rotated, err := service.RefreshSession(context.Background(), session.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// Replaying the consumed token must fail
	_, err = service.RefreshSession(context.Background(), session.RefreshToken, "", "")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

/*
TestService_Logout verifies session revocation and idempotency.
*/
func TestService_Logout(t *testing.T) {
	service, _, sessions := newTestService()
	register(t, service)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "bookworm",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))
	assert.Empty(t, sessions.sessions)

	// Logging out twice is not an error
	assert.NoError(t, service.Logout(context.Background(), session.RefreshToken))
}

// # Credential Management

/*
TestService_ChangePassword verifies the full rotation flow: new credentials
take effect, the old ones stop working, and the active session is revoked.
*/
func TestService_ChangePassword(t *testing.T) {
	service, _, sessions := newTestService()
	user := register(t, service)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "bookworm",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	err = service.ChangePassword(context.Background(), user.ID(), "sup3rsecret", "n3wsecret", session.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, sessions.sessions)

	_, err = service.Login(context.Background(), auth.LoginInput{
		Login:    "bookworm",
		Password: "sup3rsecret",
	})
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	_, err = service.Login(context.Background(), auth.LoginInput{
		Login:    "bookworm",
		Password: "n3wsecret",
	})
	assert.NoError(t, err)
}

// # Account Management

/*
TestService_SetAvatar verifies avatar replacement through the service.
*/
func TestService_SetAvatar(t *testing.T) {
	service, _, _ := newTestService()
	user := register(t, service)

	updated, err := service.SetAvatar(context.Background(), user.ID(), "https://cdn.shelfy.app/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.shelfy.app/a.png", updated.AvatarURL())

	_, err = service.SetAvatar(context.Background(), user.ID(), "not-a-url")
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

/*
TestService_Delete verifies account removal.
*/
func TestService_Delete(t *testing.T) {
	service, _, _ := newTestService()
	user := register(t, service)

	require.NoError(t, service.Delete(context.Background(), user.ID()))

	_, err := service.GetByID(context.Background(), user.ID())
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	err = service.Delete(context.Background(), user.ID())
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}
