package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMailerSend_DisabledWithoutAPIKey(t *testing.T) {
	m := NewMailerSend("", "Natours Admin", "admin@natours.io")

	assert.False(t, m.enabled)
	assert.Nil(t, m.client)

	err := m.Send("hiker@example.com", "Your password reset token", "hello")
	assert.Error(t, err)
}

func TestNewMailerSend_DisabledWithoutFromAddress(t *testing.T) {
	m := NewMailerSend("mlsn.test-key", "Natours Admin", "")

	assert.False(t, m.enabled)
	assert.Error(t, m.Send("hiker@example.com", "subject", "body"))
}

func TestNewMailerSend_Enabled(t *testing.T) {
	m := NewMailerSend("mlsn.test-key", "Natours Admin", "admin@natours.io")

	assert.True(t, m.enabled)
	assert.NotNil(t, m.client)
	assert.Equal(t, "admin@natours.io", m.from.Email)
	assert.Equal(t, "Natours Admin", m.from.Name)
}
