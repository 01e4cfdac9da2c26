package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest, sessionTrackReq SessionTrackingRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest, sessionTrackReq SessionTrackingRequest) (TokenResponse, error)
	LoginWithGoogle(ctx context.Context, email string, googleID string, sessionTrackReq SessionTrackingRequest) (TokenResponse, error)
	// DemoLogin issues tokens for the seeded demo account of a role.
	DemoLogin(ctx context.Context, req DemoLoginRequest, sessionTrackReq SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req RefreshTokenRequest, sessionTrackReq SessionTrackingRequest) (TokenResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Me(ctx context.Context) (MeResponse, error)
}
