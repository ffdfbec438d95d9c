package util

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(42, "admin", "secret")
	require.NoError(t, err)

	principal, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.UserID)
	assert.Equal(t, "admin", principal.Role)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(1, "user", "secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseJWTMalformed(t *testing.T) {
	_, err := ParseJWT("not.a.token", "secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseJWTExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": int64(1),
		"role":    "user",
		"exp":     time.Now().Add(-time.Hour).Unix(),
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseJWTMissingClaims(t *testing.T) {
	claims := jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExtractToken(t *testing.T) {
	newReq := func(header string) *http.Request {
		r, _ := http.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	assert.Equal(t, "abc", ExtractToken(newReq("Bearer abc")))
	assert.Equal(t, "abc", ExtractToken(newReq("bearer abc")))
	assert.Equal(t, "", ExtractToken(newReq("")))
	assert.Equal(t, "", ExtractToken(newReq("Basic abc")))
	assert.Equal(t, "", ExtractToken(newReq("Bearer")))
}
