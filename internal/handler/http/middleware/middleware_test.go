package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenantID = "0190a000-0000-7000-8000-000000000002"

func strPtr(s string) *string { return &s }

func accessToken(t *testing.T, svc jwt.Service, role user.Role, employeeID, companyID *string) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken("u1", "u1@example.com", employeeID, companyID, role)
	require.NoError(t, err)
	return token
}

// chain wires the middlewares the router puts in front of every
// authenticated route and records the resolved actor.
func chain(svc jwt.Service, extra func(http.Handler) http.Handler, seen *access.Actor) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := session.FromContext(r.Context())
		if err == nil && seen != nil {
			*seen = actor
		}
		w.WriteHeader(http.StatusNoContent)
	})
	var h http.Handler = final
	if extra != nil {
		h = extra(h)
	}
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(svc)(Tenant(h)))
}

func do(h http.Handler, token string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "1h", "24h", false)
	h := chain(svc, nil, nil)

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(h, "", nil).Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, _, err := svc.GenerateRefreshToken("u1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do(h, refresh, nil).Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := jwt.NewJWTService("other-secret", "1h", "24h", false)
		token := accessToken(t, other, user.RoleAdmin, strPtr("e1"), strPtr("c1"))
		assert.Equal(t, http.StatusUnauthorized, do(h, token, nil).Code)
	})

	t.Run("valid then revoked", func(t *testing.T) {
		token := accessToken(t, svc, user.RoleAdmin, strPtr("e1"), strPtr("c1"))
		assert.Equal(t, http.StatusNoContent, do(h, token, nil).Code)

		svc.RevokeToken(token, 0)
		assert.Equal(t, http.StatusUnauthorized, do(h, token, nil).Code)
	})
}

func TestTenant(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "1h", "24h", false)

	t.Run("super_admin selects a company", func(t *testing.T) {
		var seen access.Actor
		h := chain(svc, nil, &seen)
		token := accessToken(t, svc, user.RoleSuperAdmin, nil, nil)

		rec := do(h, token, map[string]string{TenantHeader: tenantID})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, tenantID, seen.CompanyID)
	})

	t.Run("header ignored for admin", func(t *testing.T) {
		var seen access.Actor
		h := chain(svc, nil, &seen)
		token := accessToken(t, svc, user.RoleAdmin, strPtr("e1"), strPtr("c1"))

		rec := do(h, token, map[string]string{TenantHeader: tenantID})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "c1", seen.CompanyID)
	})

	t.Run("invalid header", func(t *testing.T) {
		h := chain(svc, nil, nil)
		token := accessToken(t, svc, user.RoleSuperAdmin, nil, nil)
		assert.Equal(t, http.StatusBadRequest, do(h, token, map[string]string{TenantHeader: "acme"}).Code)
	})
}

func TestRequireCompany(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "1h", "24h", false)
	h := chain(svc, RequireCompany, nil)
	token := accessToken(t, svc, user.RoleSuperAdmin, nil, nil)

	assert.Equal(t, http.StatusBadRequest, do(h, token, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(h, token, map[string]string{TenantHeader: tenantID}).Code)
}

func TestRequirePermission(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "1h", "24h", false)
	h := chain(svc, RequirePermission(user.PermissionLeaveApprove), nil)

	employee := accessToken(t, svc, user.RoleEmployee, strPtr("e1"), strPtr("c1"))
	manager := accessToken(t, svc, user.RoleReportingManager, strPtr("e2"), strPtr("c1"))

	assert.Equal(t, http.StatusForbidden, do(h, employee, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(h, manager, nil).Code)
}

func TestRequireEmployeeAndSuperAdminOnly(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "1h", "24h", false)
	super := accessToken(t, svc, user.RoleSuperAdmin, nil, nil)
	admin := accessToken(t, svc, user.RoleAdmin, strPtr("e1"), strPtr("c1"))

	needsProfile := chain(svc, RequireEmployee, nil)
	assert.Equal(t, http.StatusForbidden, do(needsProfile, super, nil).Code)
	assert.Equal(t, http.StatusNoContent, do(needsProfile, admin, nil).Code)

	superOnly := chain(svc, SuperAdminOnly, nil)
	assert.Equal(t, http.StatusNoContent, do(superOnly, super, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(superOnly, admin, nil).Code)
}
