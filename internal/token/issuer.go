// Package token mints and validates the signed session tokens that stand in
// for server-side sessions. Validity is purely a function of signature and
// expiry; there is no revocation state.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every validation failure: bad signature, malformed
// structure, or expiry. Callers treat all three as unauthenticated.
var ErrInvalidToken = errors.New("invalid token")

// SessionTTL is how long a session token stays valid after issuance.
const SessionTTL = 12 * time.Hour

// Issuer is the only component that holds the signing secret.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a session token for the given account id.
func (i *Issuer) Issue(accountID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Validate checks signature and expiry and returns the embedded account id.
func (i *Issuer) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
