package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletauth/core"
)

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func testHandle(expiresIn time.Duration) core.SessionHandle {
	now := time.Now().Truncate(time.Second)
	return core.SessionHandle{
		ID:          "session-1",
		Address:     "0xAbC123000000000000000000000000000000dEaD",
		IssuedAt:    now,
		ExpiresAt:   now.Add(expiresIn),
		Initialized: true,
	}
}

func TestJWTTokenizer_RoundTrip(t *testing.T) {
	tok := NewJWTTokenizer(newKey(t), "walletauth")
	handle := testHandle(time.Hour)

	token, err := tok.HandleToToken(handle)
	require.NoError(t, err)

	got, err := tok.TokenToHandle(token)
	require.NoError(t, err)

	assert.Equal(t, handle.ID, got.ID)
	assert.Equal(t, handle.Address, got.Address)
	assert.True(t, handle.IssuedAt.Equal(got.IssuedAt))
	assert.True(t, handle.ExpiresAt.Equal(got.ExpiresAt))
	assert.True(t, got.Initialized)
	assert.Equal(t, token, got.Token)
}

func TestJWTTokenizer_Expired(t *testing.T) {
	tok := NewJWTTokenizer(newKey(t), "walletauth")

	token, err := tok.HandleToToken(testHandle(-time.Minute))
	require.NoError(t, err)

	_, err = tok.TokenToHandle(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTTokenizer_Rejects(t *testing.T) {
	key := newKey(t)
	tok := NewJWTTokenizer(key, "walletauth")

	t.Run("other issuer", func(t *testing.T) {
		token, err := NewJWTTokenizer(key, "someone-else").HandleToToken(testHandle(time.Hour))
		require.NoError(t, err)

		_, err = tok.TokenToHandle(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other key", func(t *testing.T) {
		token, err := NewJWTTokenizer(newKey(t), "walletauth").HandleToToken(testHandle(time.Hour))
		require.NoError(t, err)

		_, err = tok.TokenToHandle(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other audience", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    "walletauth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{"somewhere-else"},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
		require.NoError(t, err)

		_, err = tok.TokenToHandle(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("hmac token", func(t *testing.T) {
		claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "walletauth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{AudienceSession},
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tok.TokenToHandle(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tok.TokenToHandle("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
