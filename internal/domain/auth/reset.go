package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

const (
	ResetTokenTTL      = time.Hour
	SetPasswordLinkTTL = 72 * time.Hour
)

// NewResetToken returns a random URL-safe token for a password link and the
// hash that is stored in its place.
func NewResetToken() (raw string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, HashResetToken(raw), nil
}

// HashResetToken is the sha256 hex digest stored for a raw reset token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// PasswordLink builds a frontend link carrying a raw password token.
func PasswordLink(frontendURL, path, token string) string {
	return frontendURL + path + "?token=" + url.QueryEscape(token)
}
