// Package auth holds the credential primitives used by the user service:
// the bcrypt password hasher, the session token issuer and the password
// reset token manager.
package auth

import (
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload: the standard iat/exp pair plus the
// user id under "id".
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// TokenIssuer signs and verifies HS256 session tokens with a process-wide
// secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens live for ttl. A nil now
// uses time.Now.
func NewTokenIssuer(secret []byte, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: now}
}

// Issue returns a signed token for userID with iat set to now and exp to
// now+ttl.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	issuedAt := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
		UserID: userID,
	})

	return token.SignedString(i.secret)
}

// Verify returns the user id carried by tokenString. Malformed, expired and
// badly signed tokens all yield common.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
