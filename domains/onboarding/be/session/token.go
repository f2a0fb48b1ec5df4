package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a cookie value does not parse back to a
// session id.
var ErrInvalidToken = errors.New("invalid session token")

// Codec signs and parses the session cookie value. The cookie carries an
// HS256 JWT whose only custom claim is the session id.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a Codec. The secret must be non-empty and ttl positive.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	if len(secret) == 0 {
		panic("session: secret is required")
	}
	if ttl <= 0 {
		panic("session: ttl must be positive")
	}
	return &Codec{secret: secret, ttl: ttl}
}

// TTL reports how long issued tokens stay valid.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

type tokenClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// Issue signs a token for the given session id.
func (c *Codec) Issue(id uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.ttl)),
		},
		SessionID: id.String(),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Parse verifies a cookie value and returns the session id it carries.
func (c *Codec) Parse(value string) (uuid.UUID, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad session id claim", ErrInvalidToken)
	}

	return id, nil
}
