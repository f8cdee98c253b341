package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-cookie-secret-32-bytes-long!"
	otherSecret = "another-cookie-secret-32-bytes-xx"
)

func TestNewCookieSigner_RejectsShortSecret(t *testing.T) {
	_, err := NewCookieSigner("short")
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestNewCookieSigner_RejectsNoSecret(t *testing.T) {
	_, err := NewCookieSigner()
	assert.ErrorIs(t, err, ErrSecretTooShort)

	_, err = NewCookieSigner("", "")
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestCookieSigner_SignVerifyRoundTrip(t *testing.T) {
	s, err := NewCookieSigner(testSecret)
	require.NoError(t, err)

	signed := s.Sign("abc123")
	assert.NotContains(t, signed, "abc123", "値はbase64でエンコードされる")

	value, err := s.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)
}

func TestCookieSigner_TamperedValueRejected(t *testing.T) {
	s, err := NewCookieSigner(testSecret)
	require.NoError(t, err)

	signed := s.Sign("token-a")
	_, sig, _ := strings.Cut(signed, "|")
	forged := s.Sign("token-b")
	forgedValue, _, _ := strings.Cut(forged, "|")

	_, err = s.Verify(forgedValue + "|" + sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCookieSigner_InvalidFormat(t *testing.T) {
	s, err := NewCookieSigner(testSecret)
	require.NoError(t, err)

	for _, input := range []string{"", "no-separator", "!!!not-base64|sig"} {
		_, err := s.Verify(input)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input=%q", input)
	}
}

func TestCookieSigner_DifferentSecretRejected(t *testing.T) {
	a, err := NewCookieSigner(testSecret)
	require.NoError(t, err)
	b, err := NewCookieSigner(otherSecret)
	require.NoError(t, err)

	_, err = b.Verify(a.Sign("token"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

// 旧鍵で署名された値も、旧鍵が2番目以降に残っていれば検証できる。
func TestCookieSigner_KeyRotation(t *testing.T) {
	old, err := NewCookieSigner(testSecret)
	require.NoError(t, err)
	rotated, err := NewCookieSigner(otherSecret, testSecret)
	require.NoError(t, err)

	value, err := rotated.Verify(old.Sign("token"))
	require.NoError(t, err)
	assert.Equal(t, "token", value)

	_, err = old.Verify(rotated.Sign("token"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
