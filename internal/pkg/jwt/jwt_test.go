package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() Service {
	return NewJWTService("test-secret", "1h", "24h", false)
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := newTestService()
	employeeID := "emp-1"
	companyID := "company-1"

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "a@example.com", &employeeID, &companyID, user.RoleReportingManager)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), expiresAt, 5)

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims := parsed.PrivateClaims()
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, "company-1", claims["company_id"])
	assert.Equal(t, "reporting_manager", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestGenerateAccessToken_NilCompany(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateAccessToken("user-1", "root@example.com", nil, nil, user.RoleSuperAdmin)
	require.NoError(t, err)

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	assert.Nil(t, parsed.PrivateClaims()["company_id"])
}

func TestRefreshToken_RoundTripAndUnique(t *testing.T) {
	svc := newTestService()

	first, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	second, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	userID, err := svc.ValidateRefreshToken(first)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateTyped_RejectsWrongType(t *testing.T) {
	svc := newTestService()

	sseToken, _, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(sseToken)
	assert.Error(t, err)

	userID, err := svc.ValidateSSEToken(sseToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateTyped_RejectsForeignSignature(t *testing.T) {
	other := NewJWTService("another-secret", "1h", "24h", false)
	token, _, err := other.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = newTestService().ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestService()

	svc.RevokeToken("stale", time.Now().Add(-time.Minute).Unix())
	svc.RevokeToken("live", time.Now().Add(time.Hour).Unix())

	assert.True(t, svc.IsTokenRevoked("live"))
	// pruned while revoking "live"
	assert.False(t, svc.IsTokenRevoked("stale"))
}

func TestRefreshTokenCookie(t *testing.T) {
	cookie := NewJWTService("s", "1h", "24h", true).RefreshTokenCookie("tok", 1700000000)
	assert.Equal(t, "refresh_token", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/api/v1/auth", cookie.Path)
}
