package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/domain"
	portsrepo "github.com/SscSPs/account_auth_service/internal/core/ports/repositories"
	"github.com/SscSPs/account_auth_service/internal/models"
	"github.com/SscSPs/account_auth_service/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, username, email, role, password_hash,
	refresh_token_hash, refresh_token_expiry_time, otp_code, otp_expiry,
	created_at, last_updated_at`

// PgxAccountRepository stores accounts in the accounts table.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(db *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Username,
		&m.Email,
		&m.Role,
		&m.PasswordHash,
		&m.RefreshTokenHash,
		&m.RefreshTokenExpiryTime,
		&m.OTPCode,
		&m.OTPExpiry,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return m, err
}

func (r *PgxAccountRepository) findOne(ctx context.Context, op, where string, arg any) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + `;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translateError(op, err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

func (r *PgxAccountRepository) queryMany(ctx context.Context, op, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(op, err)
	}
	defer rows.Close()

	modelAccounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan account row: %w", op, err)
		}
		modelAccounts = append(modelAccounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating account rows: %w", op, err)
	}
	return mapping.ToDomainAccountSlice(modelAccounts), nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "find account by id", "account_id = $1", accountID)
}

func (r *PgxAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "find account by email", "email = $1", email)
}

func (r *PgxAccountRepository) FindAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, "find account by username", "username = $1", username)
}

func (r *PgxAccountRepository) FindAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY created_at ASC, account_id ASC
		LIMIT $1 OFFSET $2;`
	return r.queryMany(ctx, "list accounts", query, limit, offset)
}

func (r *PgxAccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts;`).Scan(&total); err != nil {
		return 0, translateError("count accounts", err)
	}
	return total, nil
}

func (r *PgxAccountRepository) SearchAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	sql := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE username ILIKE $1 ESCAPE '\' OR email ILIKE $1 ESCAPE '\'
		ORDER BY created_at ASC, account_id ASC;`
	return r.queryMany(ctx, "search accounts", sql, likePattern(query))
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Username,
		m.Email,
		m.Role,
		m.PasswordHash,
		m.RefreshTokenHash,
		m.RefreshTokenExpiryTime,
		m.OTPCode,
		m.OTPExpiry,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		return translateError("save account", err)
	}
	return nil
}

func (r *PgxAccountRepository) UpdateUsername(ctx context.Context, accountID string, username string, updatedAt time.Time) error {
	return r.execOne(ctx, "update username",
		`UPDATE accounts SET username = $1, last_updated_at = $2 WHERE account_id = $3;`,
		username, updatedAt, accountID)
}

func (r *PgxAccountRepository) DeleteAccountByEmail(ctx context.Context, email string) error {
	return r.execOne(ctx, "delete account",
		`DELETE FROM accounts WHERE email = $1;`, email)
}

func (r *PgxAccountRepository) UpdateRefreshToken(ctx context.Context, accountID string, refreshTokenHash string, expiresAt time.Time) error {
	return r.execOne(ctx, "update refresh token",
		`UPDATE accounts SET refresh_token_hash = $1, refresh_token_expiry_time = $2 WHERE account_id = $3;`,
		refreshTokenHash, expiresAt, accountID)
}

func (r *PgxAccountRepository) RotateRefreshToken(ctx context.Context, accountID string, presentedHash string, newHash string, expiresAt time.Time) error {
	err := r.execOne(ctx, "rotate refresh token",
		`UPDATE accounts SET refresh_token_hash = $1, refresh_token_expiry_time = $2
		WHERE account_id = $3 AND refresh_token_hash = $4;`,
		newHash, expiresAt, accountID, presentedHash)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("rotate refresh token: %w", apperrors.ErrUnauthorized)
	}
	return err
}

func (r *PgxAccountRepository) ClearRefreshToken(ctx context.Context, accountID string) error {
	return r.execOne(ctx, "clear refresh token",
		`UPDATE accounts SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL WHERE account_id = $1;`,
		accountID)
}

func (r *PgxAccountRepository) SetPasswordResetOTP(ctx context.Context, accountID string, code string, expiresAt time.Time) error {
	return r.execOne(ctx, "set password reset code",
		`UPDATE accounts SET otp_code = $1, otp_expiry = $2 WHERE account_id = $3;`,
		code, expiresAt, accountID)
}

func (r *PgxAccountRepository) UpdatePasswordHash(ctx context.Context, accountID string, passwordHash string, updatedAt time.Time) error {
	return r.execOne(ctx, "update password",
		`UPDATE accounts
		SET password_hash = $1, otp_code = NULL, otp_expiry = NULL, last_updated_at = $2
		WHERE account_id = $3;`,
		passwordHash, updatedAt, accountID)
}

func (r *PgxAccountRepository) ConsumePasswordResetOTP(ctx context.Context, accountID string, code string, passwordHash string, now time.Time) error {
	err := r.execOne(ctx, "consume password reset code",
		`UPDATE accounts
		SET password_hash = $1, otp_code = NULL, otp_expiry = NULL, last_updated_at = $2
		WHERE account_id = $3 AND otp_code = $4 AND otp_expiry >= $2;`,
		passwordHash, now, accountID, code)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("consume password reset code: %w", apperrors.ErrInvalidOTP)
	}
	return err
}
