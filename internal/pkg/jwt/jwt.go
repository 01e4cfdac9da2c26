// Package jwt issues and verifies the HS256 tokens used by the API: access
// tokens read by the jwtauth middleware, refresh tokens kept in a cookie and
// short-lived stream tokens for EventSource clients.
package jwt

import (
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
	kindStream  = "sse"

	streamTokenTTL = 5 * time.Minute
	clockSkew      = 30 * time.Second

	RefreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

type Service interface {
	GenerateAccessToken(userID string, email string, employeeID *string, companyID *string, role user.Role) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	// ValidateRefreshToken checks signature, expiry and type of a refresh token.
	ValidateRefreshToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	RevokeToken(token string, expiresAt int64)
	IsTokenRevoked(token string) bool
}

type tokenService struct {
	auth          *jwtauth.JWTAuth
	accessTTL     string
	refreshTTL    string
	secureCookies bool

	mu      sync.RWMutex
	revoked map[string]int64 // token -> unix expiry
}

// NewJWTService signs with secretKey. The TTLs are Go durations ("1h") and
// are checked by config validation before they get here.
func NewJWTService(secretKey string, accessTTL string, refreshTTL string, secureCookies bool) Service {
	return &tokenService{
		auth:          jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(clockSkew)),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
		revoked:       make(map[string]int64),
	}
}

func (s *tokenService) JWTAuth() *jwtauth.JWTAuth { return s.auth }

// sign adds type and exp to claims and encodes them.
func (s *tokenService) sign(kind string, ttl time.Duration, claims map[string]interface{}) (string, int64, error) {
	exp := time.Now().Add(ttl).Unix()
	claims["type"] = kind
	claims["exp"] = exp
	_, token, err := s.auth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return token, exp, nil
}

func (s *tokenService) GenerateAccessToken(userID string, email string, employeeID *string, companyID *string, role user.Role) (string, int64, error) {
	ttl, err := time.ParseDuration(s.accessTTL)
	if err != nil {
		return "", 0, err
	}
	return s.sign(kindAccess, ttl, map[string]interface{}{
		"user_id":     userID,
		"email":       email,
		"employee_id": optional(employeeID),
		"company_id":  optional(companyID),
		"role":        string(role),
	})
}

// GenerateRefreshToken sets a jti so tokens issued within the same second
// still differ.
func (s *tokenService) GenerateRefreshToken(userID string) (string, int64, error) {
	ttl, err := time.ParseDuration(s.refreshTTL)
	if err != nil {
		return "", 0, err
	}
	return s.sign(kindRefresh, ttl, map[string]interface{}{
		"user_id": userID,
		"jti":     uuid.NewString(),
	})
}

func (s *tokenService) GenerateSSEToken(userID string) (string, int, error) {
	token, _, err := s.sign(kindStream, streamTokenTTL, map[string]interface{}{"user_id": userID})
	if err != nil {
		return "", 0, err
	}
	return token, int(streamTokenTTL.Seconds()), nil
}

func (s *tokenService) ValidateRefreshToken(token string) (string, error) {
	return s.subject(token, kindRefresh)
}

func (s *tokenService) ValidateSSEToken(token string) (string, error) {
	return s.subject(token, kindStream)
}

// subject verifies token and returns its user_id when the type matches.
func (s *tokenService) subject(token, kind string) (string, error) {
	parsed, err := jwtauth.VerifyToken(s.auth, token)
	if err != nil {
		return "", err
	}
	if got, _ := parsed.Get("type"); got != kind {
		return "", jwt.ErrInvalidJWT()
	}
	raw, _ := parsed.Get("user_id")
	userID, _ := raw.(string)
	if userID == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return userID, nil
}

func (s *tokenService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

// RevokeToken denies token until expiresAt. Entries already past their
// expiry are dropped on every call.
func (s *tokenService) RevokeToken(token string, expiresAt int64) {
	now := time.Now().Unix()

	s.mu.Lock()
	defer s.mu.Unlock()
	for t, exp := range s.revoked {
		if exp < now {
			delete(s.revoked, t)
		}
	}
	s.revoked[token] = expiresAt
}

func (s *tokenService) IsTokenRevoked(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[token]
	return ok
}

func optional(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
