// Copyright (c) 2026 Shelfy. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfy-app/shelfy/internal/platform/sec"
)

// writeTestKeyPair generates a throwaway RSA key pair and writes both halves
// as PEM files under dir.
func writeTestKeyPair(t *testing.T, dir string) (privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPath = filepath.Join(dir, "jwt.key")
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubPath = filepath.Join(dir, "jwt.pub")
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	return privPath, pubPath
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	privPath, pubPath := writeTestKeyPair(t, t.TempDir())
	service, err := sec.NewTokenService(privPath, pubPath, "shelfy.test", 15*time.Minute)
	require.NoError(t, err)

	issued, err := service.IssueToken("0193e2f2-0000-7000-8000-000000000001", sec.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.Equal(t, sec.RoleUser, issued.Role)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := service.VerifyToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "0193e2f2-0000-7000-8000-000000000001", claims.UserID)
	assert.Equal(t, string(sec.RoleUser), claims.Role)
	assert.Equal(t, "shelfy.test", claims.Issuer)
}

func TestTokenService_RejectsTamperedToken(t *testing.T) {
	t.Parallel()

	privPath, pubPath := writeTestKeyPair(t, t.TempDir())
	service, err := sec.NewTokenService(privPath, pubPath, "shelfy.test", 15*time.Minute)
	require.NoError(t, err)

	issued, err := service.IssueToken("user-id", sec.RoleAdmin)
	require.NoError(t, err)

	tampered := issued.Token[:len(issued.Token)-2] + "xx"
	_, err = service.VerifyToken(tampered)
	assert.Error(t, err)

	_, err = service.VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	t.Parallel()

	privPath, pubPath := writeTestKeyPair(t, t.TempDir())

	// Negative TTL produces an already-expired token.
	service, err := sec.NewTokenService(privPath, pubPath, "shelfy.test", -1*time.Minute)
	require.NoError(t, err)

	issued, err := service.IssueToken("user-id", sec.RoleUser)
	require.NoError(t, err)

	_, err = service.VerifyToken(issued.Token)
	assert.Error(t, err, "expired token must be rejected even with a valid signature")
}

func TestNewTokenService_MissingKeyIsFatal(t *testing.T) {
	t.Parallel()

	_, err := sec.NewTokenService("/nonexistent/jwt.key", "/nonexistent/jwt.pub", "shelfy.test", time.Minute)
	assert.Error(t, err)
}
