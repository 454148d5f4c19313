package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// defaultOpaqueTokenTTL bounds verification and reset links when no
// configuration overrides it.
const defaultOpaqueTokenTTL = 24 * time.Hour

// Lifecycle centralizes every account state transition. Transitions are
// explicit methods that compute all derived fields (watermark bumps, cleared
// token pairs) and pass them to the store in a single update; nothing
// mutates as a storage side effect.
type Lifecycle struct {
	store    CredentialStore
	tokenTTL time.Duration
	now      func() time.Time
	activity ActivitySink
	logger   Logger
}

// LifecycleOption customizes Lifecycle construction.
type LifecycleOption func(*Lifecycle)

// WithLifecycleClock injects a custom clock (useful for tests).
func WithLifecycleClock(clock func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithLifecycleTokenTTL overrides the single-use token lifetime.
func WithLifecycleTokenTTL(ttl time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if ttl > 0 {
			l.tokenTTL = ttl
		}
	}
}

// WithLifecycleActivitySink sets the ActivitySink used to publish lifecycle events.
func WithLifecycleActivitySink(sink ActivitySink) LifecycleOption {
	return func(l *Lifecycle) {
		l.activity = normalizeActivitySink(sink)
	}
}

// WithLifecycleLogger overrides the logger used for sink failures.
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLifecycle creates a Lifecycle backed by the given store.
func NewLifecycle(store CredentialStore, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:    store,
		tokenTTL: defaultOpaqueTokenTTL,
		now:      time.Now,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// BeginEmailVerification opens a verification cycle for the account and
// returns the plaintext token to hand to the Notifier. Any previous pending
// token is overwritten; only the newest token is valid.
func (l *Lifecycle) BeginEmailVerification(ctx context.Context, account *Account) (string, error) {
	token, err := GenerateOpaqueToken()
	if err != nil {
		return "", err
	}

	expiresAt := l.now().Add(l.tokenTTL)
	if err := l.store.SetVerificationToken(ctx, account.ID, token.Hash, expiresAt); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store verification token")
	}

	l.record(ctx, ActivityEventVerificationStarted, account.ID)

	return token.Plaintext, nil
}

// CompleteEmailVerification consumes a verification token: the account flips
// to verified and the pending pair is cleared in the same atomic update.
// A missing and an expired token are indistinguishable to the caller.
func (l *Lifecycle) CompleteEmailVerification(ctx context.Context, plaintext string) (*Account, error) {
	account, err := l.store.MarkEmailVerified(ctx, HashOpaqueToken(plaintext), l.now())
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to complete email verification")
	}

	l.record(ctx, ActivityEventVerificationCompleted, account.ID)

	return account, nil
}

// BeginPasswordReset opens a reset cycle and returns the plaintext token.
// Any previous pending reset token is invalidated.
func (l *Lifecycle) BeginPasswordReset(ctx context.Context, account *Account) (string, error) {
	token, err := GenerateOpaqueToken()
	if err != nil {
		return "", err
	}

	expiresAt := l.now().Add(l.tokenTTL)
	if err := l.store.SetResetToken(ctx, account.ID, token.Hash, expiresAt); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	l.record(ctx, ActivityEventResetStarted, account.ID)

	return token.Plaintext, nil
}

// CompletePasswordReset consumes a reset token: the password hash is
// replaced, the watermark is bumped, and the pending pair is cleared in one
// atomic update.
func (l *Lifecycle) CompletePasswordReset(ctx context.Context, plaintext, newPassword string) (*Account, error) {
	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	account, err := l.store.ApplyPasswordReset(ctx, HashOpaqueToken(plaintext), l.now(), passwordHash, l.now())
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to complete password reset")
	}

	l.record(ctx, ActivityEventResetCompleted, account.ID)

	return account, nil
}

// UpdatePassword replaces the password of an authenticated account and
// bumps the watermark. The caller is responsible for checking the old
// password first.
func (l *Lifecycle) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	if err := l.store.UpdatePassword(ctx, id, passwordHash, l.now()); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	l.record(ctx, ActivityEventPasswordChanged, id)

	return nil
}

// Deactivate soft-deletes the account. Terminal for authentication: the
// record persists but no lookup on the store will return it.
func (l *Lifecycle) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := l.store.Deactivate(ctx, id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deactivate account")
	}

	l.record(ctx, ActivityEventAccountDeactivated, id)

	return nil
}

// VerificationTokenValid reports whether a verification token currently
// matches an unexpired pending record, without consuming it.
func (l *Lifecycle) VerificationTokenValid(ctx context.Context, plaintext string) (bool, error) {
	return l.probeToken(ctx, plaintext, l.store.FindByVerificationTokenHash)
}

// ResetTokenValid reports whether a reset token currently matches an
// unexpired pending record, without consuming it.
func (l *Lifecycle) ResetTokenValid(ctx context.Context, plaintext string) (bool, error) {
	return l.probeToken(ctx, plaintext, l.store.FindByResetTokenHash)
}

func (l *Lifecycle) probeToken(ctx context.Context, plaintext string, find func(context.Context, []byte, time.Time) (*Account, error)) (bool, error) {
	_, err := find(ctx, HashOpaqueToken(plaintext), l.now())
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return false, nil
		}
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to probe token")
	}
	return true, nil
}

func (l *Lifecycle) record(ctx context.Context, eventType ActivityEventType, accountID uuid.UUID) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      ActorRef{ID: accountID.String(), Type: "account"},
		AccountID:  accountID.String(),
		OccurredAt: l.now(),
	}

	if err := normalizeActivitySink(l.activity).Record(ctx, event); err != nil {
		l.logger.Warn("activity sink record error: %v", err)
	}
}
