// Copyright (c) 2026 Shelfy. All rights reserved.

/*
HTTP delivery layer for user identity management.

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/constants"
	"github.com/shelfy-app/shelfy/internal/platform/middleware"
	requestutil "github.com/shelfy-app/shelfy/internal/platform/request"
	"github.com/shelfy-app/shelfy/internal/platform/respond"
	"github.com/shelfy-app/shelfy/internal/platform/sec"
	"github.com/shelfy-app/shelfy/internal/platform/validate"
	"github.com/shelfy-app/shelfy/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements authentication and account HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] with the authentication lifecycle endpoints,
// mounted under /auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// UserRoutes returns a [chi.Router] with account management endpoints,
// mounted under /users.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	// Public profile lookup
	router.Get("/{username}", handler.getByUsername)

	// Self-service endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Get("/me", handler.me)
		r.Put("/me/avatar", handler.setAvatar)
	})

	// Administrative endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/", handler.browse)
		r.Get("/id/{userID}", handler.getByID)
		r.Delete("/id/{userID}", handler.delete)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type setAvatarRequest struct {
	AvatarURL string `json:"avatar_url"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, and persists
a new user profile to the database.

Request:
  - Body: registerRequest (Email, Username, Password)

Response:
  - 201: Profile: Created user profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Username: input.Username,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user.Profile())
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, issues a JWT access token, and injects a
secure refresh token cookie into the response.

Request:
  - Body: loginRequest (Login, Password)

Response:
  - 200: Session: Access token and user profile
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:     input.Login,
		Password:  input.Password,
		UserAgent: request.UserAgent(),
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int64(time.Until(session.AccessTokenExpiresAt) / time.Second),
		FieldUser:        session.User.Profile(),
	})
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie
and issuing a fresh access token and an updated refresh token.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing or invalid refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.authService.RefreshSession(
		request.Context(),
		cookie.Value,
		request.UserAgent(),
		middleware.RealIP(request),
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int64(time.Until(session.AccessTokenExpiresAt) / time.Second),
	})
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Description: Invalidates the refresh token (if present) and clears the
security cookies from the client.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.authService.Logout(request.Context(), cookie.Value)
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying a new one that
satisfies the password policy.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 400: ErrInvalidJSON: Weak password or validation failure
  - 401: ErrUnauthorized: Wrong current password or authentication required
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		Password(FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The active refresh session (if any) is revoked alongside the change.
	refreshToken := ""
	if cookie, cookieErr := request.Cookie(constants.RefreshTokenCookieName); cookieErr == nil {
		refreshToken = cookie.Value
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		claims.UserID,
		input.CurrentPassword,
		input.NewPassword,
		refreshToken,
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearRefreshCookie(writer)

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

/*
Me returns the authenticated user's own profile.

GET /api/v1/users/me

Response:
  - 200: Profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.GetByID(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Profile())
}

/*
GetByUsername resolves a public profile by username.

GET /api/v1/users/{username}

Response:
  - 200: Profile
  - 404: ErrNotFound: Unknown username
*/
func (handler *Handler) getByUsername(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	user, err := handler.authService.GetByUsername(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Profile())
}

/*
GetByID resolves an account by its ID.

GET /api/v1/users/id/{userID}

Response:
  - 200: Profile
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "userID")

	user, err := handler.authService.GetByID(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Profile())
}

/*
SetAvatar replaces the authenticated user's avatar image.

PUT /api/v1/users/me/avatar

Request:
  - Body: setAvatarRequest (AvatarURL)

Response:
  - 200: Profile: Updated profile
  - 400: ErrInvalidJSON: URL fails the image format rule
*/
func (handler *Handler) setAvatar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input setAvatarRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.authService.SetAvatar(request.Context(), userID, input.AvatarURL)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Profile())
}

/*
Browse lists registered accounts with pagination.

GET /api/v1/users?page=1&limit=20

Response:
  - 200: []Profile with pagination metadata
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) browse(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, meta, err := handler.authService.Browse(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profiles := make([]Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}

	respond.Paginated(writer, profiles, meta)
}

/*
Delete permanently removes an account.

DELETE /api/v1/users/id/{userID}

Response:
  - 204: No Content: Account removed
  - 403: ErrForbidden: Caller is not an administrator
  - 404: ErrNotFound: Unknown account
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "userID")

	if err := handler.authService.Delete(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Cookie Helpers

// setRefreshCookie injects the HttpOnly refresh token cookie.
func setRefreshCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie expires the refresh token cookie on the client.
func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
