package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gramseva/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "gramseva", "gramseva-portal")

	signed, err := svc.GenerateSessionToken("user-1", "sess-1", "citizen", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "citizen", claims.Role)
	assert.Equal(t, "gramseva", claims.Issuer)
}

func TestValidateExpired(t *testing.T) {
	svc := NewService("test-signing-key", "gramseva", "gramseva-portal")

	signed, err := svc.GenerateSessionToken("user-1", "sess-1", "citizen", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateWrongKey(t *testing.T) {
	svc := NewService("test-signing-key", "gramseva", "gramseva-portal")
	other := NewService("another-key", "gramseva", "gramseva-portal")

	signed, err := svc.GenerateSessionToken("user-1", "sess-1", "officer", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "gramseva", "gramseva-portal")
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
