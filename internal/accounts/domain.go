package accounts

import "time"

// ScopeAuth is the only token scope issued by this service. Logins and
// registrations mint tokens under it, and the authentication middleware
// accepts nothing else.
const ScopeAuth = "auth"

// Account represents a registered user identity.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthToken is one active session attached to an account. Rows are kept in
// issuance order.
type AuthToken struct {
	Scope     string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Projection is the externally visible shape of an account. It never carries
// the password hash or the token list.
type Projection struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Project returns the sanitized view of the account.
func (a *Account) Project() Projection {
	return Projection{ID: a.ID, Email: a.Email}
}
