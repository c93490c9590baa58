package authsvc

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quewww/blog/internal/domain"
)

// SessionClaims is the payload of the session cookie. The JWT id names the
// server-side session and the subject is the user id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject as a user id.
func (c *SessionClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse subject: %w", err)
	}

	return id, nil
}

// IssueSessionToken signs a PS256 token for s.
func IssueSessionToken(s domain.Session, issuer string, key *rsa.PrivateKey) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodPS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   strconv.FormatInt(s.UserID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseSessionToken verifies signature, issuer and expiry of tokenString at now.
// Every failure wraps domain.ErrInvalidSessionToken.
func ParseSessionToken(tokenString, issuer string, key *rsa.PublicKey, now time.Time) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodPS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidSessionToken, err)
	}

	if !token.Valid || claims.ID == "" {
		return nil, domain.ErrInvalidSessionToken
	}

	if _, err := claims.UserID(); err != nil {
		return nil, errors.Join(domain.ErrInvalidSessionToken, err)
	}

	return claims, nil
}
