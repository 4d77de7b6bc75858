package mapping

import (
	"database/sql"
	"time"

	"github.com/SscSPs/account_auth_service/internal/core/domain"
	"github.com/SscSPs/account_auth_service/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:              d.AccountID,
		Username:               d.Username,
		Email:                  d.Email,
		Role:                   string(d.Role),
		PasswordHash:           d.PasswordHash,
		RefreshTokenHash:       toNullString(d.RefreshTokenHash),
		RefreshTokenExpiryTime: toNullTime(d.RefreshTokenExpiresAt),
		OTPCode:                toNullString(d.OTPCode),
		OTPExpiry:              toNullTime(d.OTPExpiresAt),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:             m.AccountID,
		Username:              m.Username,
		Email:                 m.Email,
		Role:                  domain.Role(m.Role),
		PasswordHash:          m.PasswordHash,
		RefreshTokenHash:      m.RefreshTokenHash.String,
		RefreshTokenExpiresAt: fromNullTime(m.RefreshTokenExpiryTime),
		OTPCode:               m.OTPCode.String,
		OTPExpiresAt:          fromNullTime(m.OTPExpiry),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
