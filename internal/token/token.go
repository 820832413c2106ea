package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalid = errors.New("invalid token")

// Sign issues a bearer token binding the given user id, expiring after ttl.
func Sign(userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Verify parses and validates a signed token, returning the bound user id
// and the issued-at time. The issued-at time lets callers reject tokens
// minted before the user's last password change.
func Verify(tokenString, secret string) (string, time.Time, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", time.Time{}, err
	}
	if !t.Valid {
		return "", time.Time{}, ErrInvalid
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, ErrInvalid
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", time.Time{}, ErrInvalid
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return "", time.Time{}, ErrInvalid
	}

	return id, iat.Time, nil
}
