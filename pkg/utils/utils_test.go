package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "despacho-garcia-asociados", Slugify("  Despacho García & Asociados "))
	assert.Equal(t, "proteccion-civil", Slugify("Protección_Civil"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "acta_constitutiva.pdf", SanitizeFilename("../../acta constitutiva.pdf"))
	assert.Equal(t, "file", SanitizeFilename(".."))
	assert.Equal(t, "file", SanitizeFilename("ñññ"))
}

func TestDocumentNumbers(t *testing.T) {
	prefix := PeriodPrefix("COT-", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "COT-202603-", prefix)
	assert.Equal(t, "COT-202603-0007", FormatSequence(prefix, 7))
	assert.Equal(t, "F-12345", FormatSequence("F-", 12345))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("nope", hash))
	assert.False(t, CheckPasswordHash("s3cret", ""))
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute, time.Hour)
	id := uuid.New()

	access, err := m.GenerateAccessToken(id, "a@b.mx", []string{"admin"}, []string{"finance.access"}, true)
	require.NoError(t, err)
	claims, err := m.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, []string{"finance.access"}, claims.Permissions)
	assert.True(t, claims.SuperAdmin)

	refresh, err := m.GenerateRefreshToken(id)
	require.NoError(t, err)
	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = NewJWTManager("other", time.Minute, time.Hour).ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestJWT_TokenKindsAreNotInterchangeable(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute, time.Hour)
	id := uuid.New()

	access, err := m.GenerateAccessToken(id, "a@b.mx", nil, nil, false)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(id)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)
	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, time.Hour)
	access, err := m.GenerateAccessToken(uuid.New(), "a@b.mx", nil, nil, false)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(access)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
