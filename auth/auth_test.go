package auth

import (
	"context"
	"testing"
	"time"

	"gossipserver/models"

	"github.com/alicebob/miniredis/v2"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	token, err := SignToken(7)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), time.Unix(claims.ExpiresAt, 0), time.Minute)

	ok, err := IsValidToken(token)
	assert.True(t, ok)
	assert.NoError(t, err)
}

func TestParseRejectsBadTokens(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.MyClaims{
		UserID:         1,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	})
	expiredString, err := expired.SignedString(JwtKey)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.MyClaims{UserID: 1})
	foreignString, err := foreign.SignedString([]byte("someone else"))
	require.NoError(t, err)

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.MyClaims{})
	anonymousString, err := anonymous.SignedString(JwtKey)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":   "not.a.token",
		"expired":   expiredString,
		"signature": foreignString,
		"no user":   anonymousString,
	} {
		t.Run(name, func(t *testing.T) {
			ok, err := IsValidToken(token)
			assert.False(t, ok)
			assert.Error(t, err)
		})
	}
}

func TestSetSecret(t *testing.T) {
	original := JwtKey
	defer func() { JwtKey = original }()

	SetSecret("")
	assert.Equal(t, original, JwtKey)

	token, err := SignToken(3)
	require.NoError(t, err)
	SetSecret("rotated")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestRegistries(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	for name, reg := range map[string]Registry{
		"memory": NewMemoryRegistry(),
		"redis":  NewRedisRegistry(rdb),
	} {
		t.Run(name, func(t *testing.T) {
			first, err := reg.Register(context.Background(), "ann")
			require.NoError(t, err)
			second, err := reg.Register(context.Background(), "bob")
			require.NoError(t, err)
			assert.NotZero(t, first)
			assert.Greater(t, second, first)
		})
	}
}
