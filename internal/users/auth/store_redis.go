// Copyright (c) 2026 Shelfy. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfy-app/shelfy/internal/platform/apperr"
	"github.com/shelfy-app/shelfy/internal/platform/constants"
)

// # Session Repository (Redis)

// RedisSessionRepository implements SessionRepository using Redis.
//
// Each session is a JSON document keyed by its token hash, stored under a TTL
// aligned with the session expiry. Expired sessions vanish on their own;
// revocation is a plain DEL.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// sessionKey builds the namespaced Redis key for a token hash.
func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

/*
Create stores a session document with a TTL matching its expiry.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Serialization or storage failures
*/
func (repository *RedisSessionRepository) Create(context context.Context, session *Session) error {

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("redis_session_create_failed: session already expired")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	if err := repository.client.Set(context, sessionKey(session.TokenHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}

	return nil
}

/*
FindByTokenHash resolves a token hash into its active session.

Description: Returns apperr.NotFound when the session is absent, revoked, or
already expired out of Redis.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated entity
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {

	payload, err := repository.client.Get(context, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("redis_session_find_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_session_unmarshal_failed: %w", err)
	}

	// TokenHash is excluded from the JSON document; restore it from the key.
	session.TokenHash = tokenHash

	return session, nil
}

/*
Revoke permanently invalidates a session by deleting its document.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisSessionRepository) Revoke(context context.Context, tokenHash string) error {

	if err := repository.client.Del(context, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_failed: %w", err)
	}

	return nil
}
