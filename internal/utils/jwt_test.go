package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(secret, 42, RoleClub, 15*time.Minute, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	claims, err := ParseAccessToken(secret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Claims{Subject: 42, Role: RoleClub}, claims)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	expired, err := NewAccessToken(secret, 1, RoleAdmin, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	other, err := NewAccessToken("other-secret", 1, RoleAdmin, time.Minute, time.Now())
	require.NoError(t, err)

	noRole, err := NewAccessToken(secret, 1, "", time.Minute, time.Now())
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": RoleAdmin})
	noExpRaw, err := noExp.SignedString([]byte(secret))
	require.NoError(t, err)

	badSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "abc",
		"role": RoleClub,
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	badSubRaw, err := badSub.SignedString([]byte(secret))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired":      expired.Token,
		"wrong secret": other.Token,
		"no role":      noRole.Token,
		"no exp":       noExpRaw,
		"bad subject":  badSubRaw,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(secret, raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong horse"))
	assert.False(t, VerifyPassword("", "correct horse"))

	// out of range cost falls back to the default
	hash, err = HashPassword("pw", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "pw"))
}
