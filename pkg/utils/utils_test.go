package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRut(t *testing.T) {
	cases := []struct {
		rut  string
		want bool
	}{
		{"12.345.678-5", true},
		{"12345678-5", true},
		{"11.111.111-1", true},
		{"12.345.678-K", false},
		{"7.654.321-k", false},
		{"", false},
		{"abc-1", false},
	}
	for _, tc := range cases {
		t.Run(tc.rut, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidRut(tc.rut))
		})
	}
}

func TestNormalizeRut(t *testing.T) {
	assert.Equal(t, "12345678K", NormalizeRut(" 12.345.678-k "))
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	id := uuid.New()

	token, err := m.CreateToken(id, "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTManager("one", time.Minute).CreateToken(uuid.New(), "user")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Minute).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)
	token, err := m.CreateToken(uuid.New(), "user")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NoError(t, ComparePasswords(hash, "s3cret!"))
	assert.Error(t, ComparePasswords(hash, "wrong"))
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(16)
	require.NoError(t, err)
	b, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)

	_, err = GenerateSecureToken(0)
	assert.Error(t, err)
}

func TestErrorStatus(t *testing.T) {
	code, msg := ErrorStatus(fmt.Errorf("purchase: %w", ErrInsufficientStock))
	assert.Equal(t, http.StatusConflict, code)
	assert.NotEmpty(t, msg)

	code, _ = ErrorStatus(ErrListNotFound)
	assert.Equal(t, http.StatusNotFound, code)

	code, msg = ErrorStatus(fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, msg, "amount must be greater than zero")

	code, msg = ErrorStatus(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", msg)
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "", FormatDisplay(FromUnixSeconds(0)))
	// July is standard time in Chile (UTC-4).
	assert.Equal(t, "01-07-2026 08:00", FormatDisplay(FromUnixSeconds(1782907200)))
}
