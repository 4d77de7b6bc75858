package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/account_auth_service/internal/core/domain"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	var accounts []domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.Account)
	}
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SearchAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	args := m.Called(ctx, query)
	var accounts []domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.Account)
	}
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateUsername(ctx context.Context, accountID string, username string, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, username, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccountByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateRefreshToken(ctx context.Context, accountID string, refreshTokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, accountID, refreshTokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockAccountRepository) RotateRefreshToken(ctx context.Context, accountID string, presentedHash string, newHash string, expiresAt time.Time) error {
	args := m.Called(ctx, accountID, presentedHash, newHash, expiresAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ClearRefreshToken(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockAccountRepository) SetPasswordResetOTP(ctx context.Context, accountID string, code string, expiresAt time.Time) error {
	args := m.Called(ctx, accountID, code, expiresAt)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePasswordHash(ctx context.Context, accountID string, passwordHash string, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, passwordHash, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ConsumePasswordResetOTP(ctx context.Context, accountID string, code string, passwordHash string, now time.Time) error {
	args := m.Called(ctx, accountID, code, passwordHash, now)
	return args.Error(0)
}

// --- Recording mailer ---
type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	err    error
	onSend func()
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onSend != nil {
		m.onSend()
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// --- Test clock ---
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixedOTP string

func (f fixedOTP) Generate() (string, error) {
	return string(f), nil
}

// --- Rendezvous wrappers ---

// rendezvous holds each caller until n callers have arrived, so concurrent
// requests all pass their reads before any of them writes.
type rendezvous struct {
	wg sync.WaitGroup
}

func newRendezvous(n int) *rendezvous {
	r := &rendezvous{}
	r.wg.Add(n)
	return r
}

func (r *rendezvous) arrive() {
	r.wg.Done()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type rendezvousHasher struct {
	portssvc.PasswordHasher
	gate *rendezvous
}

func (h rendezvousHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	h.gate.arrive()
	return h.PasswordHasher.Hash(ctx, plaintext)
}

type rendezvousTokens struct {
	portssvc.TokenSvcFacade
	gate *rendezvous
}

func (t rendezvousTokens) IssueTokenPair(ctx context.Context, accountID string) (domain.TokenPair, error) {
	t.gate.arrive()
	return t.TokenSvcFacade.IssueTokenPair(ctx, accountID)
}
