package domain

import "time"

// AccountRegisteredEvent is emitted after a new account and its confirmation
// token have been persisted.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Username     string
	Email        string
	Role         string
	RegisteredAt time.Time
	TokenExpires time.Time
	Metadata     map[string]any
}

// AccountConfirmedEvent is emitted after a confirmation token was redeemed and
// the owning account enabled.
type AccountConfirmedEvent struct {
	EventID     string
	AccountID   string
	Username    string
	ConfirmedAt time.Time
	Metadata    map[string]any
}
