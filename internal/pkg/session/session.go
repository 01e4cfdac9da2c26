package session

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

type ctxKey struct{ name string }

var (
	tenantKey = &ctxKey{"tenant"}
	actorKey  = &ctxKey{"actor"}
)

// WithActor binds an already resolved actor to ctx, for callers without an
// HTTP token such as the admin CLI.
func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// WithTenant stores the company a super_admin selected for this request.
func WithTenant(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, tenantKey, companyID)
}

// TenantFromContext returns the selected company, if any.
func TenantFromContext(ctx context.Context) (string, bool) {
	companyID, ok := ctx.Value(tenantKey).(string)
	return companyID, ok && companyID != ""
}

// FromContext returns the actor bound with WithActor, or builds it from the
// verified JWT claims on ctx.
func FromContext(ctx context.Context) (access.Actor, error) {
	if actor, ok := ctx.Value(actorKey).(access.Actor); ok {
		return actor, nil
	}
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return access.Actor{}, fmt.Errorf("failed to extract claims from context: %w", access.ErrNoSession)
	}
	return ActorFromClaims(ctx, claims)
}

// ActorFromClaims maps access token claims to an actor. A tenant override on
// ctx applies only to super_admin.
func ActorFromClaims(ctx context.Context, claims map[string]interface{}) (access.Actor, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return access.Actor{}, fmt.Errorf("user_id claim is missing or invalid: %w", access.ErrNoSession)
	}

	roleStr, _ := claims["role"].(string)
	role := user.Role(roleStr)
	if !role.IsValid() {
		return access.Actor{}, fmt.Errorf("role claim is missing or invalid: %w", access.ErrNoSession)
	}

	actor := access.Actor{
		UserID: userID,
		Role:   role,
	}
	actor.Email, _ = claims["email"].(string)
	actor.EmployeeID, _ = claims["employee_id"].(string)
	actor.CompanyID, _ = claims["company_id"].(string)

	if role == user.RoleSuperAdmin {
		if tenant, ok := TenantFromContext(ctx); ok {
			actor.CompanyID = tenant
		}
	} else if actor.CompanyID == "" {
		return access.Actor{}, user.ErrCompanyIDRequired
	}

	return actor, nil
}

// RequireCompany returns the actor's company, failing for a super_admin
// who has not selected one.
func RequireCompany(actor access.Actor) (string, error) {
	if actor.CompanyID == "" {
		return "", user.ErrCompanyIDRequired
	}
	return actor.CompanyID, nil
}
