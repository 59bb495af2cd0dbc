package domain

import "time"

// PasswordResetToken is a single-use, time-limited credential for resetting
// a password. Only the digest of the token string is persisted.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsValid reports whether the token can still be redeemed at now.
// It is evaluated fresh on every use.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// IsExpired reports whether the token is past its expiry at now.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
