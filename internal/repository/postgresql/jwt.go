package postgresql

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

// JWTRepository persists issued refresh tokens. Only a SHA-256 digest of each
// token is stored.
type JWTRepository interface {
	CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error
	IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error)
	// RevokeRefreshToken returns auth.ErrRefreshTokenRevoked when the token
	// is unknown or was already revoked, which makes rotation single-use.
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type refreshTokenRepository struct {
	db *database.DB
}

func NewJWTRepository(db *database.DB) JWTRepository {
	return &refreshTokenRepository{db: db}
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r *refreshTokenRepository) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error {
	_, err := GetQuerier(ctx, r.db).Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, tokenDigest(token), time.Unix(expiresAt, 0).UTC(), sessionReq.UserAgent, sessionReq.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// IsRefreshTokenRevoked treats unknown and expired tokens as revoked.
func (r *refreshTokenRepository) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	var active bool
	err := GetQuerier(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
		)
	`, tokenDigest(token)).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return !active, nil
}

func (r *refreshTokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	tag, err := GetQuerier(ctx, r.db).Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenDigest(token))
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrRefreshTokenRevoked
	}
	return nil
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := GetQuerier(ctx, r.db).Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}

// DeleteExpiredRefreshTokens purges rows that expired or were revoked before
// the cutoff.
func (r *refreshTokenRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := GetQuerier(ctx, r.db).Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1 OR revoked_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
