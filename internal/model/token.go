package model

import "time"

// DownloadToken is a single-use bearer capability for downloading one document.
//
// UsedAt moves from nil to set exactly once. A token whose ExpiresAt has
// passed is invalid whether or not it was used.
type DownloadToken struct {
	ID         string     `json:"id"`
	DocumentID DocumentID `json:"document_id"`
	Token      string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedBy  UserID     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Expired reports whether the token is past its expiry at now.
func (t *DownloadToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Redeemable reports whether the token can still be consumed at now.
func (t *DownloadToken) Redeemable(now time.Time) bool {
	return t.UsedAt == nil && !t.Expired(now)
}
