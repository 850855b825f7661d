package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account mirrors the persisted representation in the users table.
type Account struct {
	ID                 string
	Username           string
	Email              string
	PasswordHash       string
	Role               Role
	Enabled            bool
	Locked             bool
	Expired            bool
	CredentialsExpired bool
	CreatedAt          time.Time
}

// CanAuthenticate reports whether the account may present credentials at all.
// A pending (not yet confirmed) account is rejected separately so callers can
// distinguish "confirm your email first" from hard lockouts.
func (a Account) CanAuthenticate() bool {
	return !a.Locked && !a.Expired && !a.CredentialsExpired
}
