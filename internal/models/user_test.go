package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hashed, err := HashPassword("secret123")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", hashed)

	user := User{Password: hashed}
	assert.True(t, user.CorrectPassword("secret123"))
	assert.False(t, user.CorrectPassword("wrong-password"))
}

func TestChangedPasswordAfter(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		changedAt time.Time
		issuedAt  time.Time
		want      bool
	}{
		{"never changed", time.Time{}, now, false},
		{"token issued after change", now.Add(-time.Hour), now, false},
		{"token issued before change", now.Add(-time.Hour), now.Add(-2 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{PasswordChangedAt: tt.changedAt}
			assert.Equal(t, tt.want, user.ChangedPasswordAfter(tt.issuedAt))
		})
	}
}

func TestNewPasswordResetToken(t *testing.T) {
	raw, hashed, expires, err := NewPasswordResetToken()
	require.NoError(t, err)

	// The raw token goes to email; only its digest is stored.
	assert.Len(t, raw, 64)
	assert.NotEqual(t, raw, hashed)
	assert.Equal(t, HashToken(raw), hashed)

	assert.WithinDuration(t, time.Now().Add(PasswordResetTTL), expires, 5*time.Second)
}

func TestNewPasswordResetToken_Unique(t *testing.T) {
	a, _, _, err := NewPasswordResetToken()
	require.NoError(t, err)
	b, _, _, err := NewPasswordResetToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
}

func TestPublic(t *testing.T) {
	user := User{Name: "A", Photo: "a.jpg", Role: "guide", Password: "hash"}
	pub := user.Public()

	assert.Equal(t, "A", pub.Name)
	assert.Equal(t, "a.jpg", pub.Photo)
	assert.Equal(t, "guide", pub.Role)
}
