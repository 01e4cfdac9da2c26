package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
)

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := session.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if !actor.Can(permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, actor.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireEmployee rejects accounts without an employee profile, such as a
// bare super_admin, on self-service routes.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := session.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}
		if !actor.HasEmployee() {
			response.HandleError(w, user.ErrEmployeeProfileRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
