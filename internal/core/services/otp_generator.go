package services

import (
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/utils"
)

// OTPDigits is the length of a password-reset code.
const OTPDigits = 6

type numericOTPGenerator struct {
	digits int
}

// NewOTPGenerator returns a generator of uniformly random 6-digit codes.
func NewOTPGenerator() portssvc.OTPGenerator {
	return &numericOTPGenerator{digits: OTPDigits}
}

func (g *numericOTPGenerator) Generate() (string, error) {
	return utils.GenerateNumericCode(g.digits)
}
