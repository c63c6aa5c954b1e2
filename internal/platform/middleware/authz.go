// Copyright (c) 2026 Shelfy. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/shelfy-app/shelfy/internal/platform/ctxutil"
	"github.com/shelfy-app/shelfy/internal/platform/sec"
)

// # Authentication & Authorization

// TokenVerifier abstracts the JWT validation logic (implemented by sec.TokenService).
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Authenticate parses the Bearer token if present and injects the claims
// into the context. It does NOT reject unauthenticated requests; route
// protection is the job of [RequireAuth] and [RequireRole].
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header format")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects any request that carries no verified identity.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if ctxutil.GetAuthUser(request.Context()) == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRole rejects authenticated requests whose role is below the minimum.
func RequireRole(minimum sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(minimum) {
				writeError(writer, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
