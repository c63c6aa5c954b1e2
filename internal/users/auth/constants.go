// Copyright (c) 2026 Shelfy. All rights reserved.

package auth

import "time"

// # Token Lifetimes

const (
	// AccessTokenTTL is the lifetime of a signed JWT access token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of a refresh-token session in Redis.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the number of random source bytes in a refresh token.
	RefreshTokenLength = 32
)
