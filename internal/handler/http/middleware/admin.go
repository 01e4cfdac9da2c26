package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
)

func SuperAdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := session.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if actor.Role != user.RoleSuperAdmin {
			response.HandleError(w, user.ErrSuperAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
