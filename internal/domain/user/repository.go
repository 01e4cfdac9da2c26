package user

import (
	"context"
	"time"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByGoogleID(ctx context.Context, googleID string) (User, error)
	GetDemoUser(ctx context.Context, role Role) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	LinkGoogleAccount(ctx context.Context, userID string, googleID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateRole(ctx context.Context, userID string, role Role) error
	SetActive(ctx context.Context, userID string, active bool) error
	SetPasswordResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetByPasswordResetToken(ctx context.Context, tokenHash string) (User, error)
	ClearPasswordResetToken(ctx context.Context, userID string) error
	TouchLastLogin(ctx context.Context, userID string) error
}
