package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/oauth"
	"github.com/go-chi/jwtauth/v5"
)

const (
	oauthStateCookie   = "state"
	oauthStateTTL      = 5 * time.Minute
	googleCallbackPath = "/api/v1/auth/oauth/callback/google"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	DemoLogin(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type authHandler struct {
	tokens        jwt.Service
	auth          auth.AuthService
	google        oauth.GoogleService // nil when Google sign-in is not configured
	frontendURL   string
	secureCookies bool
}

func NewAuthHandler(tokens jwt.Service, authService auth.AuthService, google oauth.GoogleService, frontendURL string, secureCookies bool) AuthHandler {
	return &authHandler{
		tokens:        tokens,
		auth:          authService,
		google:        google,
		frontendURL:   frontendURL,
		secureCookies: secureCookies,
	}
}

func sessionTracking(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
}

// issue sets the refresh cookie and answers 201 with both tokens.
func (h *authHandler) issue(w http.ResponseWriter, message string, tokens auth.TokenResponse) {
	http.SetCookie(w, h.tokens.RefreshTokenCookie(tokens.RefreshToken, tokens.RefreshTokenExpiresIn))
	response.Created(w, message, tokens)
}

// refreshRequest takes the refresh token from the cookie, falling back to
// the JSON body for clients that cannot keep cookies.
func refreshRequest(w http.ResponseWriter, r *http.Request, name string) (auth.RefreshTokenRequest, bool) {
	var req auth.RefreshTokenRequest
	if c, err := r.Cookie(jwt.RefreshCookieName); err == nil && c.Value != "" {
		req.RefreshToken = c.Value
		if err := req.Validate(); err != nil {
			response.HandleError(w, err)
			return req, false
		}
		return req, true
	}
	return req, bind(w, r, name, &req)
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !bind(w, r, "Register", &req) {
		return
	}

	tokens, err := h.auth.Register(r.Context(), req, sessionTracking(r))
	if err != nil {
		slog.Error("Register failed", "company_username", req.CompanyUsername, "error", err)
		response.HandleError(w, err)
		return
	}
	slog.Info("Company registered", "company_username", req.CompanyUsername)
	h.issue(w, "User created successfully", tokens)
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !bind(w, r, "Login", &req) {
		return
	}

	tokens, err := h.auth.Login(r.Context(), req, sessionTracking(r))
	if err != nil {
		slog.Warn("Login failed", "error", err)
		response.HandleError(w, err)
		return
	}
	h.issue(w, "User logged in successfully", tokens)
}

func (h *authHandler) DemoLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.DemoLoginRequest
	if !bind(w, r, "DemoLogin", &req) {
		return
	}

	tokens, err := h.auth.DemoLogin(r.Context(), req, sessionTracking(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	slog.Info("Demo login", "role", req.Role)
	h.issue(w, "Demo user logged in successfully", tokens)
}

// LoginWithGoogle stores a random state in a short-lived cookie and sends
// the browser to Google's consent screen.
func (h *authHandler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		response.HandleError(w, auth.ErrGoogleDisabled)
		return
	}

	state, err := h.google.GenerateState()
	if err != nil {
		response.HandleError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     googleCallbackPath,
		Expires:  time.Now().Add(oauthStateTTL),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.RedirectURL(state), http.StatusTemporaryRedirect)
}

func (h *authHandler) frontendCallback(w http.ResponseWriter, r *http.Request, params url.Values) {
	target := h.frontendURL + "/auth/callback/google?" + params.Encode()
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle always answers with a redirect to the frontend, with
// either access_token or error in the query.
func (h *authHandler) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	fail := func(reason string, err error) {
		if err != nil {
			slog.Error("Google sign-in failed", "reason", reason, "error", err)
		}
		h.frontendCallback(w, r, url.Values{"error": {reason}})
	}

	if h.google == nil {
		fail("google_disabled", nil)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" {
		fail("state_cookie_not_found", err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: googleCallbackPath, MaxAge: -1})

	q := r.URL.Query()
	switch {
	case q.Get("error") != "":
		fail(q.Get("error"), nil)
		return
	case q.Get("state") != stateCookie.Value:
		fail("state_mismatch", nil)
		return
	case q.Get("code") == "":
		fail("code_empty", nil)
		return
	}

	token, err := h.google.VerifyToken(r.Context(), q.Get("code"))
	if err != nil {
		fail("token_verification_failed", err)
		return
	}
	profile, err := h.google.VerifyUser(r.Context(), token)
	if err != nil {
		fail("user_verification_failed", err)
		return
	}

	tokens, err := h.auth.LoginWithGoogle(r.Context(), profile.Email, profile.GoogleID, sessionTracking(r))
	if err != nil {
		fail("login_failed", err)
		return
	}

	http.SetCookie(w, h.tokens.RefreshTokenCookie(tokens.RefreshToken, tokens.RefreshTokenExpiresIn))
	h.frontendCallback(w, r, url.Values{
		"access_token": {tokens.AccessToken},
		"expires_in":   {strconv.FormatInt(tokens.AccessTokenExpiresIn, 10)},
	})
}

// Logout revokes the refresh token and, when a valid bearer token came
// along, that access token too.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	req, ok := refreshRequest(w, r, "Logout")
	if !ok {
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		response.HandleError(w, err)
		return
	}

	if raw := jwtauth.TokenFromHeader(r); raw != "" {
		if token, err := jwtauth.VerifyToken(h.tokens.JWTAuth(), raw); err == nil {
			h.tokens.RevokeToken(raw, token.Expiration().Unix())
		}
	}

	expired := h.tokens.RefreshTokenCookie("", 0)
	expired.MaxAge = -1
	http.SetCookie(w, expired)
	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

func (h *authHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	req, ok := refreshRequest(w, r, "RefreshToken")
	if !ok {
		return
	}

	tokens, err := h.auth.RefreshToken(r.Context(), req, sessionTracking(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.issue(w, "Token refreshed successfully", tokens)
}

// ForgotPassword answers the same whether or not the email is registered.
func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ForgotPasswordRequest
	if !bind(w, r, "ForgotPassword", &req) {
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "If the email is registered, a password reset link has been sent", nil)
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if !bind(w, r, "ResetPassword", &req) {
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Password has been reset successfully", nil)
}

func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.auth.Me(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, me)
}
