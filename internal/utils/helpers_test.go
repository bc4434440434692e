package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	otp, err := GenerateOTP(6)
	require.NoError(t, err)
	assert.Len(t, otp, 6)
	for _, r := range otp {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestGenerateRandomPasswordSatisfiesRules(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := GenerateRandomPassword(RandomPasswordLength)
		require.NoError(t, err)
		assert.Len(t, pw, RandomPasswordLength)
		assert.Empty(t, ValidatePassword(pw), pw)
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-3"} {
		_, err := ParseID(raw)
		assert.Error(t, err, raw)
	}
}

func TestStoredFileName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "foto-finca-1700000000123-3f2a9c1e.jpg", StoredFileName("Foto Finca.JPG", now, "3f2a9c1e"))
	assert.Equal(t, "archivo-1700000000123-00ff00ff.glb", StoredFileName("***.glb", now, "00ff00ff"))
}

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "+573001234567", FormatPhoneNumber(" +57 (300) 123-4567 "))
}

func TestMinutesUntil(t *testing.T) {
	assert.Equal(t, 1, MinutesUntil(time.Now().Add(-time.Minute)))
	assert.Equal(t, 3, MinutesUntil(time.Now().Add(2*time.Minute+30*time.Second)))
}

func TestParseFormBool(t *testing.T) {
	assert.True(t, ParseFormBool("true"))
	assert.True(t, ParseFormBool("1"))
	assert.False(t, ParseFormBool("no"))
	assert.False(t, ParseFormBool(""))
}
