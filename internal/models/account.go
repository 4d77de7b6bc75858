package models

import (
	"database/sql"
	"time"
)

// Account is the row shape of the accounts table.
type Account struct {
	AccountID    string `db:"account_id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	Role         string `db:"role"`
	PasswordHash string `db:"password_hash"`

	// Refresh Token Fields
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`        // Store hash of the refresh token
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"` // Expiry of the stored refresh token

	// Password reset fields
	OTPCode   sql.NullString `db:"otp_code"`
	OTPExpiry sql.NullTime   `db:"otp_expiry"`

	AuditFields
}

// AuditFields holds standard audit columns.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}
