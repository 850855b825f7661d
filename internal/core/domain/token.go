package domain

import "time"

// ConfirmationToken is a single-use, time-bounded proof that a registration's
// email address was confirmed. Many tokens may historically exist per account;
// the latest one is authoritative.
type ConfirmationToken struct {
	ID        string
	Token     string
	Created   time.Time
	Expires   time.Time
	Confirmed *time.Time
	AccountID string
	Username  string
}

// IsExpired reports whether the token has elapsed its validity window.
// The boundary is inclusive: a token expiring exactly at `at` is expired.
func (t ConfirmationToken) IsExpired(at time.Time) bool {
	return !t.Expires.After(at)
}

// IsConfirmed reports whether the token has already been redeemed.
func (t ConfirmationToken) IsConfirmed() bool {
	return t.Confirmed != nil
}

// Confirm records the redemption moment.
// Returns true if the token transitioned from pending to confirmed.
func (t *ConfirmationToken) Confirm(at time.Time) bool {
	if t.Confirmed != nil {
		return false
	}
	timeCopy := at
	t.Confirmed = &timeCopy
	return true
}
