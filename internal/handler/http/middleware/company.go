package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

// TenantHeader lets a super_admin act inside one company.
const TenantHeader = "X-Company-ID"

// Tenant stores the X-Company-ID header of a super_admin request on the
// context. The header is ignored for every other role.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID := r.Header.Get(TenantHeader)
		if companyID == "" {
			next.ServeHTTP(w, r)
			return
		}

		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if role, _ := claims["role"].(string); role != string(user.RoleSuperAdmin) {
			next.ServeHTTP(w, r)
			return
		}

		if !validator.IsValidUUID(companyID) {
			response.BadRequest(w, TenantHeader+" must be a valid UUID", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithTenant(r.Context(), companyID)))
	})
}

// RequireCompany rejects requests that have no company to act in, which only
// happens for a super_admin without X-Company-ID.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := session.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}
		if _, err := session.RequireCompany(actor); err != nil {
			response.HandleError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
