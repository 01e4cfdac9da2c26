package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RefreshTokenPurger deletes refresh tokens that expired or were revoked before a cutoff.
type RefreshTokenPurger interface {
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type TokenJobs struct {
	tokens   RefreshTokenPurger
	interval time.Duration
	now      func() time.Time
}

func NewTokenJobs(tokens RefreshTokenPurger, interval time.Duration) *TokenJobs {
	return &TokenJobs{tokens: tokens, interval: interval, now: time.Now}
}

func (j *TokenJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("expire_refresh_tokens", j.interval, j.ExpireRefreshTokens)
}

func (j *TokenJobs) ExpireRefreshTokens(ctx context.Context) error {
	deleted, err := j.tokens.DeleteExpiredRefreshTokens(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	slog.Info("Cron: Expired refresh tokens removed", "count", deleted)
	return nil
}
