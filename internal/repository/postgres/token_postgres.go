package postgres

import (
	"context"
	"database/sql"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const tokenColumns = `id, document_id, token, expires_at, used_at, created_by, created_at`

// TokenPostgres is a PostgreSQL implementation of repository.TokenRepository.
type TokenPostgres struct {
	db *sql.DB
}

// NewTokenPostgres creates a new TokenPostgres repository.
func NewTokenPostgres(db *sql.DB) *TokenPostgres {
	return &TokenPostgres{db: db}
}

var _ repository.TokenRepository = (*TokenPostgres)(nil)

func scanToken(row rowScanner, t *model.DownloadToken) error {
	var usedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.DocumentID, &t.Token, &t.ExpiresAt, &usedAt, &t.CreatedBy, &t.CreatedAt); err != nil {
		return err
	}
	if usedAt.Valid {
		ts := usedAt.Time
		t.UsedAt = &ts
	}
	return nil
}

// Create inserts a new token row.
func (r *TokenPostgres) Create(ctx context.Context, t *model.DownloadToken) error {
	const q = `
		INSERT INTO download_tokens (id, document_id, token, expires_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.DocumentID, t.Token, t.ExpiresAt, t.CreatedBy, t.CreatedAt)
	return err
}

// FindBySecret looks a token up by its secret.
func (r *TokenPostgres) FindBySecret(ctx context.Context, secret string) (*model.DownloadToken, error) {
	const q = `SELECT ` + tokenColumns + ` FROM download_tokens WHERE token = $1`
	var t model.DownloadToken
	if err := scanToken(r.db.QueryRowContext(ctx, q, secret), &t); err != nil {
		return nil, mapNoRows(err)
	}
	return &t, nil
}

// MarkUsed consumes the token in a single guarded UPDATE. Concurrent callers
// race on the row lock; only the first sees a returned row.
func (r *TokenPostgres) MarkUsed(ctx context.Context, secret string, now time.Time) (*model.DownloadToken, error) {
	const q = `
		UPDATE download_tokens SET used_at = $2
		WHERE token = $1 AND used_at IS NULL AND expires_at >= $2
		RETURNING ` + tokenColumns
	var t model.DownloadToken
	if err := scanToken(r.db.QueryRowContext(ctx, q, secret, now), &t); err != nil {
		return nil, mapNoRows(err)
	}
	return &t, nil
}

// DeleteExpired removes tokens past expiry regardless of use.
func (r *TokenPostgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM download_tokens WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
