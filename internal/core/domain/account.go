package domain

import (
	"strings"
	"time"
)

// Role controls access to administrative operations.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// AllowedRoles is the closed set of roles an account can hold.
var AllowedRoles = []Role{RoleAdmin, RoleManager, RoleUser}

// ParseRole normalizes raw and reports whether it names an allowed role.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, allowed := range AllowedRoles {
		if r == allowed {
			return r, true
		}
	}
	return "", false
}

// Account represents a user account in the domain.
type Account struct {
	AccountID    string `json:"accountID"` // Primary Key (UUID)
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`

	// Current session. Only the SHA-256 of the refresh token is kept.
	RefreshTokenHash      string     `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	// Pending password-reset code.
	OTPCode      string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`

	AuditFields
}

// IsAdmin reports whether the account passes the admin-only gate.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasActiveSession reports whether a refresh token is currently stored.
func (a *Account) HasActiveSession() bool {
	return a.RefreshTokenHash != ""
}

// HasPendingOTP reports whether a password-reset code is waiting to be confirmed.
func (a *Account) HasPendingOTP() bool {
	return a.OTPCode != ""
}

// OTPExpired reports whether the pending code is past its expiry at now.
// A code without an expiry is treated as expired.
func (a *Account) OTPExpired(now time.Time) bool {
	if a.OTPExpiresAt == nil {
		return true
	}
	return now.After(*a.OTPExpiresAt)
}

// Sanitized returns a copy with every credential field stripped.
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	a.RefreshTokenHash = ""
	a.RefreshTokenExpiresAt = nil
	a.OTPCode = ""
	a.OTPExpiresAt = nil
	return a
}

// NormalizeIdentifier lower-cases and trims a username or email.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
