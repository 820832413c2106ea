package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestSignVerify_RoundTrip(t *testing.T) {
	tok, err := Sign("507f191e810c19729de860ea", secret, time.Hour)
	require.NoError(t, err)

	id, issuedAt, err := Verify(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "507f191e810c19729de860ea", id)
	assert.WithinDuration(t, time.Now(), issuedAt, 5*time.Second)
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := Sign("abc", secret, time.Hour)
	require.NoError(t, err)

	_, _, err = Verify(tok, "other-secret")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestVerify_Expired(t *testing.T) {
	tok, err := Sign("abc", secret, -time.Minute)
	require.NoError(t, err)

	_, _, err = Verify(tok, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_Garbage(t *testing.T) {
	_, _, err := Verify("not.a.token", secret)
	assert.Error(t, err)
}
