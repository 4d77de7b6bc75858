package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/domain"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

const (
	testAccessToken = "valid-access-token"
	testAccountID   = "acc-1"
)

var errInvalidTestToken = apperrors.NewUnauthorizedErrorWithCause("token has expired", apperrors.ErrTokenExpired)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Error      dto.ErrorBody   `json:"error"`
}

type HandlersTestSuite struct {
	suite.Suite
	accounts *MockAccountService
	sessions *MockSessionService
	google   *MockGoogleOAuth
	deps     Dependencies
	router   *gin.Engine
}

func (s *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *HandlersTestSuite) SetupTest() {
	s.accounts = new(MockAccountService)
	s.sessions = new(MockSessionService)
	s.google = new(MockGoogleOAuth)
	s.deps = Dependencies{}
	s.router = s.buildRouter()
}

func (s *HandlersTestSuite) TearDownTest() {
	s.accounts.AssertExpectations(s.T())
	s.sessions.AssertExpectations(s.T())
	s.google.AssertExpectations(s.T())
}

func (s *HandlersTestSuite) buildRouter() *gin.Engine {
	cfg := &config.Config{CookiePath: "/", IsProduction: true}
	r := gin.New()
	RegisterRoutes(r, cfg, &portssvc.ServiceContainer{
		Account:            s.accounts,
		Session:            s.sessions,
		TokenService:       stubTokens{validToken: testAccessToken, accountID: testAccountID},
		GoogleOAuthHandler: s.google,
	}, s.deps)
	return r
}

func (s *HandlersTestSuite) do(method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testAccessToken)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) decode(w *httptest.ResponseRecorder) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func testAccount() *domain.Account {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Account{
		AccountID:   testAccountID,
		Username:    "alice",
		Email:       "alice@example.com",
		Role:        domain.RoleUser,
		AuditFields: domain.AuditFields{CreatedAt: created, LastUpdatedAt: created},
	}
}

func testSession() *domain.Session {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Session{
		Tokens: domain.TokenPair{
			Access:  domain.IssuedToken{Token: "access-1", Class: domain.TokenClassAccess, ExpiresAt: now.Add(15 * time.Minute), TTL: 15 * time.Minute},
			Refresh: domain.IssuedToken{Token: "refresh-1", Class: domain.TokenClassRefresh, ExpiresAt: now.Add(168 * time.Hour), TTL: 168 * time.Hour},
		},
		Account: *testAccount(),
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *HandlersTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, false)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *HandlersTestSuite) TestHealth_DatabaseDown() {
	s.deps.Health = pingFunc(func(context.Context) error { return errors.New("connection refused") })
	s.router = s.buildRouter()

	w := s.do(http.MethodGet, "/health", nil, false)
	s.Equal(http.StatusServiceUnavailable, w.Code)

	s.deps.Health = pingFunc(func(context.Context) error { return nil })
	s.router = s.buildRouter()
	w = s.do(http.MethodGet, "/health", nil, false)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestRegister_Created() {
	req := dto.RegisterRequest{Username: "alice", Role: "user", Email: "alice@example.com", Password: "Password1"}
	s.accounts.On("Register", mock.Anything, req).Return(testAccount(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/users/register", req, false)

	s.Equal(http.StatusCreated, w.Code)
	env := s.decode(w)
	s.True(env.Success)
	s.Equal(http.StatusCreated, env.StatusCode)
	var data dto.AccountResponse
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal("alice@example.com", data.Email)
	s.Equal("user", data.Role)
	s.NotContains(w.Body.String(), "password")
}

func (s *HandlersTestSuite) TestRegister_MissingFieldIsValidationError() {
	w := s.do(http.MethodPost, "/api/v1/users/register", map[string]string{"email": "alice@example.com"}, false)

	s.Equal(http.StatusBadRequest, w.Code)
	env := s.decode(w)
	s.False(env.Success)
	s.Equal(apperrors.KindValidation, env.Error.Code)
}

func (s *HandlersTestSuite) TestRegister_Conflict() {
	req := dto.RegisterRequest{Username: "alice", Role: "user", Email: "alice@example.com", Password: "Password1"}
	s.accounts.On("Register", mock.Anything, req).Return(nil, apperrors.NewConflictError("User already exists")).Once()

	w := s.do(http.MethodPost, "/api/v1/users/register", req, false)

	s.Equal(http.StatusConflict, w.Code)
	env := s.decode(w)
	s.Equal(apperrors.KindConflict, env.Error.Code)
	s.Equal("User already exists", env.Error.Message)
}

func (s *HandlersTestSuite) TestLogin_SetsSessionCookies() {
	s.sessions.On("Login", mock.Anything, "alice@example.com", "Password1").Return(testSession(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/users/login", dto.LoginRequest{Email: "alice@example.com", Password: "Password1"}, false)

	s.Require().Equal(http.StatusOK, w.Code)
	access := findCookie(w, middleware.AccessTokenCookie)
	s.Require().NotNil(access)
	s.Equal("access-1", access.Value)
	s.True(access.HttpOnly)
	s.True(access.Secure)
	s.Equal(http.SameSiteStrictMode, access.SameSite)
	s.Equal(900, access.MaxAge)

	refresh := findCookie(w, RefreshTokenCookie)
	s.Require().NotNil(refresh)
	s.Equal("refresh-1", refresh.Value)
	s.Equal(int((168 * time.Hour).Seconds()), refresh.MaxAge)

	var data dto.LoginResponse
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &data))
	s.Equal("access-1", data.AccessToken)
	s.Equal(testAccountID, data.Account.AccountID)
}

func (s *HandlersTestSuite) TestLogin_WrongPassword() {
	s.sessions.On("Login", mock.Anything, "alice@example.com", "nope").
		Return(nil, apperrors.NewUnauthorizedError("Invalid user credentials")).Once()

	w := s.do(http.MethodPost, "/api/v1/users/login", dto.LoginRequest{Email: "alice@example.com", Password: "nope"}, false)

	s.Equal(http.StatusUnauthorized, w.Code)
	env := s.decode(w)
	s.Equal(apperrors.KindUnauthorized, env.Error.Code)
	s.Nil(findCookie(w, middleware.AccessTokenCookie))
}

func (s *HandlersTestSuite) TestLogin_RateLimited() {
	loginLimiter, err := middleware.NewLimiter(memory.NewStore(), "1-M")
	s.Require().NoError(err)
	s.deps.LoginLimiter = loginLimiter
	s.router = s.buildRouter()
	s.sessions.On("Login", mock.Anything, "alice@example.com", "Password1").Return(testSession(), nil).Once()

	body := dto.LoginRequest{Email: "alice@example.com", Password: "Password1"}
	first := s.do(http.MethodPost, "/api/v1/users/login", body, false)
	second := s.do(http.MethodPost, "/api/v1/users/login", body, false)

	s.Equal(http.StatusOK, first.Code)
	s.Equal(http.StatusTooManyRequests, second.Code)
	s.Equal(apperrors.KindTooManyRequests, s.decode(second).Error.Code)
}

func (s *HandlersTestSuite) TestRefresh_FromBody() {
	s.sessions.On("Refresh", mock.Anything, "refresh-0").Return(testSession(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/users/refresh", dto.RefreshTokenRequest{RefreshToken: "refresh-0"}, false)

	s.Equal(http.StatusOK, w.Code)
	s.Require().NotNil(findCookie(w, RefreshTokenCookie))
	s.Equal("refresh-1", findCookie(w, RefreshTokenCookie).Value)
}

func (s *HandlersTestSuite) TestRefresh_PrefersCookie() {
	s.sessions.On("Refresh", mock.Anything, "cookie-token").Return(testSession(), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh", strings.NewReader(`{"refreshToken":"body-token"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "cookie-token"})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestRefresh_MissingToken() {
	w := s.do(http.MethodPost, "/api/v1/users/refresh", nil, false)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apperrors.KindUnauthorized, s.decode(w).Error.Code)
}

func (s *HandlersTestSuite) TestLogout_IsIdempotent() {
	s.sessions.On("Logout", mock.Anything, testAccountID).Return(nil).Twice()

	first := s.do(http.MethodGet, "/api/v1/users/logout", nil, true)
	second := s.do(http.MethodGet, "/api/v1/users/logout", nil, true)

	s.Equal(http.StatusOK, first.Code)
	s.Equal(http.StatusOK, second.Code)
	cleared := findCookie(first, middleware.AccessTokenCookie)
	s.Require().NotNil(cleared)
	s.Empty(cleared.Value)
	s.True(cleared.MaxAge < 0)
}

func (s *HandlersTestSuite) TestLogout_RequiresToken() {
	w := s.do(http.MethodGet, "/api/v1/users/logout", nil, false)

	s.Equal(http.StatusUnauthorized, w.Code)
	env := s.decode(w)
	s.False(env.Success)
	s.Equal(apperrors.KindUnauthorized, env.Error.Code)
}

func (s *HandlersTestSuite) TestMe_ExpiredTokenMessage() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer stale")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("token has expired", s.decode(w).Error.Message)
}

func (s *HandlersTestSuite) TestMe_FromCookie() {
	s.accounts.On("GetAccountByID", mock.Anything, testAccountID).Return(testAccount(), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: testAccessToken})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	var data dto.AccountResponse
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &data))
	s.Equal("alice", data.Username)
}

func (s *HandlersTestSuite) TestChangePasswordAfterLogin_OtherEmailIsForbidden() {
	s.accounts.On("GetAccountByID", mock.Anything, testAccountID).Return(testAccount(), nil).Once()

	w := s.do(http.MethodPut, "/api/v1/users/changePasswordAfterUserLogin", dto.ChangePasswordRequest{
		Email: "bob@example.com", OldPassword: "Password1", NewPassword: "Password2",
	}, true)

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apperrors.KindForbidden, s.decode(w).Error.Code)
	s.sessions.AssertNotCalled(s.T(), "ChangePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlersTestSuite) TestChangePasswordAfterLogin_OwnEmail() {
	s.accounts.On("GetAccountByID", mock.Anything, testAccountID).Return(testAccount(), nil).Once()
	s.sessions.On("ChangePassword", mock.Anything, "Alice@Example.com", "Password1", "Password2").Return(nil).Once()

	w := s.do(http.MethodPut, "/api/v1/users/changePasswordAfterUserLogin", dto.ChangePasswordRequest{
		Email: "Alice@Example.com", OldPassword: "Password1", NewPassword: "Password2",
	}, true)

	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestPasswordReset_RequestAndConfirm() {
	s.sessions.On("RequestPasswordReset", mock.Anything, "alice@example.com").Return(nil).Once()
	s.sessions.On("ConfirmPasswordReset", mock.Anything, "alice@example.com", "123456", "Password2").Return(nil).Once()

	w := s.do(http.MethodPost, "/api/v1/users/changePassword", dto.PasswordResetRequest{Email: "alice@example.com"}, false)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/users/updatePassword", map[string]string{
		"email": "alice@example.com", "OTPCode": "123456", "newPassword": "Password2",
	}, false)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestPasswordReset_ExpiredCode() {
	s.sessions.On("ConfirmPasswordReset", mock.Anything, "alice@example.com", "123456", "Password2").
		Return(apperrors.NewUnauthorizedErrorWithCause("OTP has expired", apperrors.ErrOTPExpired)).Once()

	w := s.do(http.MethodPost, "/api/v1/users/updatePassword", map[string]string{
		"email": "alice@example.com", "OTPCode": "123456", "newPassword": "Password2",
	}, false)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apperrors.KindOTPExpired, s.decode(w).Error.Code)
}

func (s *HandlersTestSuite) TestPasswordReset_MailFailureIsInternal() {
	s.sessions.On("RequestPasswordReset", mock.Anything, "alice@example.com").
		Return(apperrors.NewInternalServerErrorWithCause("Failed to send reset email", apperrors.ErrMailDelivery)).Once()

	w := s.do(http.MethodPost, "/api/v1/users/changePassword", dto.PasswordResetRequest{Email: "alice@example.com"}, false)

	s.Equal(http.StatusInternalServerError, w.Code)
	env := s.decode(w)
	s.Equal(apperrors.KindInternal, env.Error.Code)
	s.NotContains(env.Error.Message, apperrors.ErrMailDelivery.Error())
}

func (s *HandlersTestSuite) TestListAccounts_BadPagingFallsBack() {
	page := &domain.AccountPage{Accounts: []domain.Account{*testAccount()}, Page: 1, PageSize: 10, Total: 1, TotalPages: 1}
	s.accounts.On("ListAccounts", mock.Anything, 1, 10).Return(page, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/users/allUser?page=abc&limit=-3", nil, true)

	s.Equal(http.StatusOK, w.Code)
	var data dto.ListAccountsResponse
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &data))
	s.Len(data.Accounts, 1)
	s.Equal(int64(1), data.Pagination.Total)
}

func (s *HandlersTestSuite) TestCountAccounts() {
	s.accounts.On("CountAccounts", mock.Anything).Return(int64(3), nil).Once()

	w := s.do(http.MethodGet, "/api/v1/users/getUserLength", nil, true)

	s.Equal(http.StatusOK, w.Code)
	var data dto.CountAccountsResponse
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &data))
	s.Equal(int64(3), data.UserCount)
}

func (s *HandlersTestSuite) TestSearchAccounts_NoMatchIsEmptyList() {
	s.accounts.On("SearchAccounts", mock.Anything, "zed").Return([]domain.Account{}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/users/searchUser?q=zed", nil, true)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"users":[]}`, string(s.decode(w).Data))
}

func (s *HandlersTestSuite) TestUpdateUsername() {
	renamed := testAccount()
	renamed.Username = "alice2"
	s.accounts.On("UpdateUsername", mock.Anything, testAccountID, "alice2").Return(renamed, nil).Once()

	w := s.do(http.MethodPut, "/api/v1/users/editUserName", dto.UpdateUsernameRequest{Username: "alice2"}, true)

	s.Equal(http.StatusOK, w.Code)
	var data dto.UpdateUsernameResponse
	s.Require().NoError(json.Unmarshal(s.decode(w).Data, &data))
	s.Equal("alice2", data.Username)
}

func (s *HandlersTestSuite) TestDeleteAccount_NonAdminForbidden() {
	s.accounts.On("DeleteAccount", mock.Anything, testAccountID, "bob@example.com").
		Return(apperrors.NewForbiddenError("Only Admin can delete records")).Once()

	w := s.do(http.MethodDelete, "/api/v1/users/userDelete", dto.DeleteAccountRequest{Email: "bob@example.com"}, true)

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("Only Admin can delete records", s.decode(w).Error.Message)
}

func (s *HandlersTestSuite) TestGoogleIDToken_SignsIn() {
	payload := &idtoken.Payload{Subject: "google-sub", Claims: map[string]any{"email": "alice@example.com", "email_verified": true}}
	s.google.On("ValidateGoogleIDToken", mock.Anything, "google-id-token").Return(payload, nil).Once()
	s.sessions.On("LoginWithVerifiedEmail", mock.Anything, "alice@example.com").Return(testSession(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/users/google/id-token", dto.GoogleIDTokenRequest{IDToken: "google-id-token"}, false)

	s.Equal(http.StatusOK, w.Code)
	s.NotNil(findCookie(w, middleware.AccessTokenCookie))
}

func (s *HandlersTestSuite) TestGoogleIDToken_UnverifiedEmail() {
	payload := &idtoken.Payload{Subject: "google-sub", Claims: map[string]any{"email": "alice@example.com", "email_verified": false}}
	s.google.On("ValidateGoogleIDToken", mock.Anything, "google-id-token").Return(payload, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/users/google/id-token", dto.GoogleIDTokenRequest{IDToken: "google-id-token"}, false)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestGoogleExchangeCode() {
	token := (&oauth2.Token{AccessToken: "google-access"}).WithExtra(map[string]any{"id_token": "google-id-token"})
	payload := &idtoken.Payload{Subject: "google-sub", Claims: map[string]any{"email": "alice@example.com"}}
	s.google.On("ExchangeCodeForToken", mock.Anything, "auth-code").Return(token, nil).Once()
	s.google.On("ValidateGoogleIDToken", mock.Anything, "google-id-token").Return(payload, nil).Once()
	s.sessions.On("LoginWithVerifiedEmail", mock.Anything, "alice@example.com").Return(testSession(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/users/google/exchange-code", dto.GoogleCodeRequest{Code: "auth-code"}, false)

	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestGoogle_NotConfigured() {
	s.google.On("ExchangeCodeForToken", mock.Anything, "auth-code").
		Return(nil, apperrors.NewServiceUnavailableError("Google sign-in is not configured")).Once()

	w := s.do(http.MethodPost, "/api/v1/users/google/exchange-code", dto.GoogleCodeRequest{Code: "auth-code"}, false)

	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(apperrors.KindServiceUnavailable, s.decode(w).Error.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func TestVerifiedEmail(t *testing.T) {
	email, ok := verifiedEmail(&idtoken.Payload{Claims: map[string]any{"email": "a@example.com"}})
	require.Equal(t, "a@example.com", email)
	require.True(t, ok)

	_, ok = verifiedEmail(&idtoken.Payload{Claims: map[string]any{"email": "a@example.com", "email_verified": false}})
	require.False(t, ok)
}
