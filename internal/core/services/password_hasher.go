package services

import (
	"context"
	"errors"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type bcryptHasher struct {
	cost int
}

// NewPasswordHasher returns a bcrypt hasher. An out-of-range cost falls back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) portssvc.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

type hashResult struct {
	digest string
	err    error
}

// Hash runs bcrypt off the request goroutine so a cancelled request returns at once.
func (h *bcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan hashResult, 1)
	go func() {
		digest, err := utils.HashPassword(plaintext, h.cost)
		done <- hashResult{digest: digest, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, bcrypt.ErrPasswordTooLong) {
				return "", apperrors.NewValidationError("Password must be at most 72 bytes")
			}
			return "", apperrors.NewInternalServerErrorWithCause("Failed to hash password", res.err)
		}
		return res.digest, nil
	}
}

func (h *bcryptHasher) Verify(_ context.Context, plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return utils.CheckPasswordHash(plaintext, digest)
}
