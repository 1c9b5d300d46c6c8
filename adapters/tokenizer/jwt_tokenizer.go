package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

// AudienceSession is the audience of session tokens
const AudienceSession = "walletauth:session"

var (
	// ErrInvalidToken is returned when a token cannot be parsed or verified
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a token has expired
	ErrTokenExpired = errors.New("token has expired")
)

// JWTTokenizer implements the Tokenizer interface using ES256 JWTs
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
	issuer  string
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(signKey *ecdsa.PrivateKey, issuer string) ports.Tokenizer {
	return &JWTTokenizer{signKey: signKey, issuer: issuer}
}

// HandleToToken converts a SessionHandle to a signed JWT
func (j *JWTTokenizer) HandleToToken(handle core.SessionHandle) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   handle.Address.String(),
			ID:        handle.ID,
			ExpiresAt: jwt.NewNumericDate(handle.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(handle.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Initialized: handle.Initialized,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// TokenToHandle parses and verifies a session JWT
func (j *JWTTokenizer) TokenToHandle(tokenStr string) (core.SessionHandle, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession), jwt.WithIssuer(j.issuer), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return core.SessionHandle{}, ErrTokenExpired
		}
		return core.SessionHandle{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return core.SessionHandle{}, ErrInvalidToken
	}

	handle := core.SessionHandle{
		ID:          claims.ID,
		Address:     core.WalletAddress(claims.Subject),
		ExpiresAt:   claims.ExpiresAt.Time,
		Token:       tokenStr,
		Initialized: claims.Initialized,
	}
	if claims.IssuedAt != nil {
		handle.IssuedAt = claims.IssuedAt.Time
	}

	return handle, nil
}
