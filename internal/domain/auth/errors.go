package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountInactive     = errors.New("account is deactivated")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrGoogleNotLinked     = errors.New("no active account is registered for this Google email")
	ErrGoogleDisabled      = errors.New("google sign-in is not configured")
	ErrDemoLoginDisabled   = errors.New("demo login is disabled")
	ErrDemoUserNotFound    = errors.New("no demo account exists for this role")
)
