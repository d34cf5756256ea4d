package models

import "time"

// RefreshToken is a long-lived, server-tracked credential exchanged for a
// new access token. The token string is opaque (32 random bytes, hex),
// its validity is determined solely by this row, never by its content.
//
// Rows are never deleted: a used or expired token is flipped to revoked and
// kept as an audit trail. A token is usable for rotation iff revoked is
// false and expires_at is in the future.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"` // never serialized
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
