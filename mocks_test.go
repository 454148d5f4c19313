package auth_test

import (
	"bytes"
	"context"
	"sync"
	"time"

	auth "github.com/zeyadwaleed003/commerce-auth"

	"github.com/google/uuid"
)

// testConfig implements auth.Config with deterministic values.
type testConfig struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	opaqueTTL     time.Duration
	issuer        string
	audience      []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		accessSecret:  "access-secret-for-tests",
		refreshSecret: "refresh-secret-for-tests",
		accessTTL:     15 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
		opaqueTTL:     24 * time.Hour,
		issuer:        "commerce-auth-test",
		audience:      []string{"commerce-api"},
	}
}

func (c *testConfig) GetAccessTokenSigningKey() string          { return c.accessSecret }
func (c *testConfig) GetAccessTokenExpiration() time.Duration   { return c.accessTTL }
func (c *testConfig) GetRefreshTokenSigningKey() string         { return c.refreshSecret }
func (c *testConfig) GetRefreshTokenExpiration() time.Duration  { return c.refreshTTL }
func (c *testConfig) GetOpaqueTokenExpiration() time.Duration   { return c.opaqueTTL }
func (c *testConfig) GetIssuer() string                         { return c.issuer }
func (c *testConfig) GetAudience() []string                     { return c.audience }

// memoryStore is an in-memory CredentialStore fake. It mirrors the
// production semantics: lookups exclude inactive accounts and the
// transition updates apply their guards under a single lock.
type memoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*auth.Account
}

func newMemoryStore() *memoryStore {
	return &memoryStore{accounts: map[uuid.UUID]*auth.Account{}}
}

func cloneAccount(a *auth.Account) *auth.Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.EmailVerificationTokenHash != nil {
		clone.EmailVerificationTokenHash = append([]byte(nil), a.EmailVerificationTokenHash...)
	}
	if a.PasswordResetTokenHash != nil {
		clone.PasswordResetTokenHash = append([]byte(nil), a.PasswordResetTokenHash...)
	}
	if a.EmailVerificationExpiresAt != nil {
		t := *a.EmailVerificationExpiresAt
		clone.EmailVerificationExpiresAt = &t
	}
	if a.PasswordResetExpiresAt != nil {
		t := *a.PasswordResetExpiresAt
		clone.PasswordResetExpiresAt = &t
	}
	if a.PasswordChangedAt != nil {
		t := *a.PasswordChangedAt
		clone.PasswordChangedAt = &t
	}
	return &clone
}

func (m *memoryStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	normalized := auth.NormalizeEmail(email)
	for _, a := range m.accounts {
		if a.Active && a.Email == normalized {
			return cloneAccount(a), nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (m *memoryStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.accounts[id]; ok && a.Active {
		return cloneAccount(a), nil
	}
	return nil, auth.ErrAccountNotFound
}

func (m *memoryStore) FindByVerificationTokenHash(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a := m.matchVerification(hash, notExpiredBefore); a != nil {
		return cloneAccount(a), nil
	}
	return nil, auth.ErrAccountNotFound
}

func (m *memoryStore) FindByResetTokenHash(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a := m.matchReset(hash, notExpiredBefore); a != nil {
		return cloneAccount(a), nil
	}
	return nil, auth.ErrAccountNotFound
}

func (m *memoryStore) CreateAccount(ctx context.Context, account *auth.Account) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account.EnsureDefaults()
	m.accounts[account.ID] = cloneAccount(account)
	return cloneAccount(account), nil
}

func (m *memoryStore) SetVerificationToken(ctx context.Context, id uuid.UUID, hash []byte, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok || !a.Active {
		return auth.ErrAccountNotFound
	}
	a.EmailVerificationTokenHash = append([]byte(nil), hash...)
	a.EmailVerificationExpiresAt = &expiresAt
	return nil
}

func (m *memoryStore) MarkEmailVerified(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.matchVerification(hash, notExpiredBefore)
	if a == nil {
		return nil, auth.ErrAccountNotFound
	}
	a.EmailVerified = true
	a.EmailVerificationTokenHash = nil
	a.EmailVerificationExpiresAt = nil
	return cloneAccount(a), nil
}

func (m *memoryStore) SetResetToken(ctx context.Context, id uuid.UUID, hash []byte, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok || !a.Active {
		return auth.ErrAccountNotFound
	}
	a.PasswordResetTokenHash = append([]byte(nil), hash...)
	a.PasswordResetExpiresAt = &expiresAt
	return nil
}

func (m *memoryStore) ApplyPasswordReset(ctx context.Context, hash []byte, notExpiredBefore time.Time, passwordHash string, changedAt time.Time) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.matchReset(hash, notExpiredBefore)
	if a == nil {
		return nil, auth.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	a.PasswordChangedAt = &changedAt
	a.PasswordResetTokenHash = nil
	a.PasswordResetExpiresAt = nil
	return cloneAccount(a), nil
}

func (m *memoryStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok || !a.Active {
		return auth.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	a.PasswordChangedAt = &changedAt
	a.PasswordResetTokenHash = nil
	a.PasswordResetExpiresAt = nil
	return nil
}

func (m *memoryStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok || !a.Active {
		return auth.ErrAccountNotFound
	}
	a.Active = false
	return nil
}

func (m *memoryStore) matchVerification(hash []byte, notExpiredBefore time.Time) *auth.Account {
	if len(hash) == 0 {
		return nil
	}
	for _, a := range m.accounts {
		if a.Active &&
			bytes.Equal(a.EmailVerificationTokenHash, hash) &&
			a.EmailVerificationExpiresAt != nil &&
			a.EmailVerificationExpiresAt.After(notExpiredBefore) {
			return a
		}
	}
	return nil
}

func (m *memoryStore) matchReset(hash []byte, notExpiredBefore time.Time) *auth.Account {
	if len(hash) == 0 {
		return nil
	}
	for _, a := range m.accounts {
		if a.Active &&
			bytes.Equal(a.PasswordResetTokenHash, hash) &&
			a.PasswordResetExpiresAt != nil &&
			a.PasswordResetExpiresAt.After(notExpiredBefore) {
			return a
		}
	}
	return nil
}

// capturingNotifier records every outbound notification.
type sentEmail struct {
	kind  string
	name  string
	email string
	token string
}

type capturingNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (n *capturingNotifier) SendVerificationEmail(ctx context.Context, name, email, token string) error {
	return n.record("verification", name, email, token)
}

func (n *capturingNotifier) SendPasswordResetEmail(ctx context.Context, name, email, token string) error {
	return n.record("reset", name, email, token)
}

func (n *capturingNotifier) record(kind, name, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentEmail{kind: kind, name: name, email: email, token: token})
	return nil
}

func (n *capturingNotifier) lastToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ""
	}
	return n.sent[len(n.sent)-1].token
}

func (n *capturingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// capturingSink records activity events.
type capturingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt auth.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *capturingSink) has(eventType auth.ActivityEventType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

// quietLogger drops all output to keep test logs readable.
type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}
