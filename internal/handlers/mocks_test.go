package handlers

import (
	"context"

	"github.com/SscSPs/account_auth_service/internal/core/domain"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, page, pageSize int) (*domain.AccountPage, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountPage), args.Error(1)
}

func (m *MockAccountService) CountAccounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountService) SearchAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateUsername(ctx context.Context, accountID, username string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, requesterID, targetEmail string) error {
	args := m.Called(ctx, requesterID, targetEmail)
	return args.Error(0)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) session(args mock.Arguments) (*domain.Session, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return m.session(m.Called(ctx, email, password))
}

func (m *MockSessionService) LoginWithVerifiedEmail(ctx context.Context, email string) (*domain.Session, error) {
	return m.session(m.Called(ctx, email))
}

func (m *MockSessionService) Logout(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

func (m *MockSessionService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return m.session(m.Called(ctx, refreshToken))
}

func (m *MockSessionService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockSessionService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	return m.Called(ctx, email, code, newPassword).Error(0)
}

func (m *MockSessionService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	return m.Called(ctx, email, oldPassword, newPassword).Error(0)
}

// stubTokens accepts exactly one access token.
type stubTokens struct {
	validToken string
	accountID  string
}

func (s stubTokens) IssueAccessToken(context.Context, string) (domain.IssuedToken, error) {
	return domain.IssuedToken{}, nil
}

func (s stubTokens) IssueRefreshToken(context.Context, string) (domain.IssuedToken, error) {
	return domain.IssuedToken{}, nil
}

func (s stubTokens) IssueTokenPair(context.Context, string) (domain.TokenPair, error) {
	return domain.TokenPair{}, nil
}

func (s stubTokens) VerifyAccessToken(token string) (string, error) {
	if token != s.validToken {
		return "", errInvalidTestToken
	}
	return s.accountID, nil
}

func (s stubTokens) VerifyRefreshToken(string) (string, error) {
	return "", errInvalidTestToken
}

type MockGoogleOAuth struct {
	mock.Mock
}

func (m *MockGoogleOAuth) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockGoogleOAuth) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockGoogleOAuth) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	args := m.Called(ctx, idTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idtoken.Payload), args.Error(1)
}
