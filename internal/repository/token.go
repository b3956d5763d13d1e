package repository

import (
	"context"
	"time"

	"docvault/internal/model"
)

// TokenRepository stores download tokens.
type TokenRepository interface {
	Create(ctx context.Context, t *model.DownloadToken) error

	// FindBySecret returns ErrNotFound when no token has the given secret.
	FindBySecret(ctx context.Context, secret string) (*model.DownloadToken, error)

	// MarkUsed sets used_at to now on the token with the given secret, but only
	// if it is unused and not expired at now. The check and the write are one
	// conditional statement; ErrNotFound means nothing was redeemed.
	MarkUsed(ctx context.Context, secret string, now time.Time) (*model.DownloadToken, error)

	// DeleteExpired removes every token whose expiry is before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
