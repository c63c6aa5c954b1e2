// Copyright (c) 2026 Shelfy. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// application layer via small ports (hasher, token issuer).
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT access token.
//
// # Why custom claims?
//
// By embedding the user ID and role directly inside the JWT, the
// authentication middleware can reconstruct the active user context without
// querying the database on every single API request. Verification is fully
// stateless: signature plus expiry, no issuer round trip.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Role   string `json:"rol"`
}

// IssuedToken is the result of a successful token issuance: the signed token
// string, the subject's role, and the declared expiry timestamp.
type IssuedToken struct {
	Token     string    `json:"token"`
	Role      UserRole  `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService handles generation and verification of JWT tokens using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	ttl        time.Duration
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths; a missing or
// malformed key is fatal, since the process cannot issue tokens without it.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string, ttl time.Duration) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		ttl:        ttl,
	}, nil
}

// IssueToken creates a signed, time-bounded access token for the given user.
//
// The returned [IssuedToken] carries the declared expiry so clients never
// have to decode the JWT themselves.
func (service *TokenService) IssueToken(userID string, role UserRole) (*IssuedToken, error) {
	currentTime := time.Now()
	expiresAt := currentTime.Add(service.ttl)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Role:   string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return &IssuedToken{
		Token:     signedToken,
		Role:      role,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyToken checks the signature and validity of a JWT string.
//
// Verification is self-contained: any holder of the public key can perform
// it without contacting the issuer. Expired tokens are rejected regardless
// of signature validity.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
