package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Auther is the use-case layer. It sequences the credential store, the
// lifecycle machine, the token codec, and the notifier, and returns a
// uniform Result envelope on success and a typed error on every expected
// failure. It keeps no cross-request state; every method is safe to call
// concurrently.
type Auther struct {
	store            CredentialStore
	lifecycle        *Lifecycle
	tokens           TokenService
	notifier         Notifier
	logger           Logger
	activity         ActivitySink
	deterministicIDs bool
	now              func() time.Time
}

// NewAuthenticator returns a new Auther with injected collaborators.
func NewAuthenticator(store CredentialStore, tokens TokenService, lifecycle *Lifecycle, notifier Notifier) *Auther {
	return &Auther{
		store:     store,
		lifecycle: lifecycle,
		tokens:    tokens,
		notifier:  notifier,
		logger:    defLogger{},
		activity:  noopActivitySink{},
		now:       time.Now,
	}
}

// WithLogger overrides the logger.
func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activity = normalizeActivitySink(sink)
	return s
}

// WithDeterministicIDs derives new account ids from the signup email
// instead of random UUIDs.
func (s *Auther) WithDeterministicIDs() *Auther {
	s.deterministicIDs = true
	return s
}

// WithClock injects a custom time source (useful for tests).
func (s *Auther) WithClock(clock func() time.Time) *Auther {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Signup registers a new account and starts a verification cycle. The
// notifier is invoked exactly once with the plaintext verification token.
func (s *Auther) Signup(ctx context.Context, payload SignupPayload) (*Result, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload")
	}

	email := NormalizeEmail(payload.Email)

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !goerrors.Is(err, ErrAccountNotFound) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
	}

	passwordHash, err := HashPassword(payload.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	account := &Account{
		Name:         payload.Name,
		Email:        email,
		Photo:        payload.Photo,
		PasswordHash: passwordHash,
		Active:       true,
	}
	account.EnsureDefaults()
	if s.deterministicIDs {
		if id, err := hashid.NewUUID(email); err == nil {
			account.ID = id
		}
	}

	account, err = s.store.CreateAccount(ctx, account)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account")
	}

	s.logger.Info("new account created id=%s", account.ID)
	s.emit(ctx, ActivityEventSignup, account.ID.String(), nil)

	if err := s.startVerificationCycle(ctx, account); err != nil {
		return nil, err
	}

	return successResult("Account created successfully. Please check your email to verify your account."), nil
}

// VerifyEmail consumes a verification token. Calling it again with the same
// token fails: the pending pair was cleared when the state advanced.
func (s *Auther) VerifyEmail(ctx context.Context, token string) (*Result, error) {
	if _, err := s.lifecycle.CompleteEmailVerification(ctx, token); err != nil {
		return nil, err
	}

	return successResult("Your email has been successfully verified."), nil
}

// Login authenticates an email/password pair. Every credential mismatch
// resolves to the same ErrInvalidCredentials so callers cannot probe which
// emails are registered. An unverified account gets a fresh verification
// email and an error-shaped reply instead of tokens.
func (s *Auther) Login(ctx context.Context, payload LoginPayload) (*Result, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	account, err := s.store.FindByEmail(ctx, NormalizeEmail(payload.Email))
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			s.emit(ctx, ActivityEventLoginFailure, "", map[string]any{"email": NormalizeEmail(payload.Email)})
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if !account.HasLocalPassword() {
		s.emit(ctx, ActivityEventLoginFailure, account.ID.String(), nil)
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(payload.Password, account.PasswordHash); err != nil {
		s.emit(ctx, ActivityEventLoginFailure, account.ID.String(), nil)
		return nil, ErrInvalidCredentials
	}

	if !account.EmailVerified {
		// Restart the verification cycle so a stranded user gets a fresh
		// link; the login still reports failure.
		if err := s.startVerificationCycle(ctx, account); err != nil {
			return nil, err
		}
		return nil, ErrEmailNotVerified
	}

	result, err := s.tokenPairResult(account)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ActivityEventLoginSuccess, account.ID.String(), nil)

	return result, nil
}

// RefreshToken mints a new access token from a valid refresh token. A
// refresh token issued before the password-change watermark is rejected.
func (s *Auther) RefreshToken(ctx context.Context, payload RefreshTokenPayload) (*Result, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid refresh payload")
	}

	claims, err := s.tokens.VerifyRefreshToken(payload.RefreshToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	id, err := claims.AccountID()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountGone
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if account.ChangedPasswordAfter(claims.Issued()) {
		return nil, ErrPasswordChanged
	}

	accessToken, err := s.tokens.IssueAccessToken(account)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ActivityEventTokenRefreshed, account.ID.String(), nil)

	result := successResult("")
	result.AccessToken = accessToken
	return result, nil
}

// ForgotPassword starts a reset cycle. The response shape is identical
// whether or not the email is registered; the only explicit failure is a
// provider-provisioned account, which has no password to reset.
func (s *Auther) ForgotPassword(ctx context.Context, payload ForgotPasswordPayload) (*Result, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid forgot-password payload")
	}

	result := successResult("Please check your email for the password reset link.")

	account, err := s.store.FindByEmail(ctx, NormalizeEmail(payload.Email))
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			// Enumeration-safe no-op.
			s.logger.Debug("forgot-password for unknown email")
			return result, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if !account.HasLocalPassword() {
		return nil, ErrNoLocalPassword
	}

	token, err := s.lifecycle.BeginPasswordReset(ctx, account)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendPasswordResetEmail(ctx, account.Name, account.Email, token); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send password reset email")
	}

	return result, nil
}

// ResetPassword consumes a reset token and replaces the password. The token
// is single-use: the pending pair clears in the same update that replaces
// the hash and bumps the watermark.
func (s *Auther) ResetPassword(ctx context.Context, payload ResetPasswordPayload) (*Result, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid reset payload")
	}

	if _, err := s.lifecycle.CompletePasswordReset(ctx, payload.Token, payload.Password); err != nil {
		return nil, err
	}

	return successResult("Your password has been reset successfully, please login again."), nil
}

// ChangePassword replaces the password of an authenticated account after
// checking the old one. Tokens issued before the change stop working.
func (s *Auther) ChangePassword(ctx context.Context, id uuid.UUID, payload ChangePasswordPayload) (*Result, error) {
	if err := payload.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid change-password payload")
	}

	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return nil, ErrWrongPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if !account.HasLocalPassword() {
		return nil, ErrNoLocalPassword
	}

	if err := ComparePasswordAndHash(payload.OldPassword, account.PasswordHash); err != nil {
		return nil, ErrWrongPassword
	}

	if err := s.lifecycle.UpdatePassword(ctx, account.ID, payload.NewPassword); err != nil {
		return nil, err
	}

	return successResult("Your password has been updated successfully."), nil
}

// HandleOAuthCallback issues a token pair for an account already resolved
// by the identity-provider bridge, mirroring the login success shape.
func (s *Auther) HandleOAuthCallback(ctx context.Context, account *Account) (*Result, error) {
	if account == nil {
		return nil, goerrors.New("account must not be nil", goerrors.CategoryBadInput)
	}

	result, err := s.tokenPairResult(account)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ActivityEventOAuthLogin, account.ID.String(), nil)

	return result, nil
}

// ResolveProviderAccount finds or provisions the local account for a
// provider profile. Provider accounts carry no local password and arrive
// with the provider's verified email.
func (s *Auther) ResolveProviderAccount(ctx context.Context, name, email, photo string) (*Account, error) {
	normalized := NormalizeEmail(email)

	account, err := s.store.FindByEmail(ctx, normalized)
	if err == nil {
		return account, nil
	}
	if !goerrors.Is(err, ErrAccountNotFound) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	account = &Account{
		Name:          name,
		Email:         normalized,
		Photo:         photo,
		EmailVerified: true,
		Active:        true,
	}
	account.EnsureDefaults()

	account, err = s.store.CreateAccount(ctx, account)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to provision provider account")
	}

	return account, nil
}

// Authorize is the protected-call check: it verifies an access token,
// confirms the account still exists and is active, and applies the
// password-change watermark against the token's issue time.
func (s *Auther) Authorize(ctx context.Context, accessToken string) (*Account, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	id, err := claims.AccountID()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountGone
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if account.ChangedPasswordAfter(claims.Issued()) {
		return nil, ErrPasswordChanged
	}

	return account, nil
}

// DeactivateAccount soft-deletes the caller's account. The record persists,
// but the account becomes invisible to login and token refresh.
func (s *Auther) DeactivateAccount(ctx context.Context, id uuid.UUID) (*Result, error) {
	if err := s.lifecycle.Deactivate(ctx, id); err != nil {
		return nil, err
	}

	return successResult("Your account has been deleted."), nil
}

func (s *Auther) startVerificationCycle(ctx context.Context, account *Account) error {
	token, err := s.lifecycle.BeginEmailVerification(ctx, account)
	if err != nil {
		return err
	}

	if err := s.notifier.SendVerificationEmail(ctx, account.Name, account.Email, token); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send verification email")
	}

	return nil
}

func (s *Auther) tokenPairResult(account *Account) (*Result, error) {
	accessToken, err := s.tokens.IssueAccessToken(account)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(account.ID)
	if err != nil {
		return nil, err
	}

	result := successResult("")
	result.AccessToken = accessToken
	result.RefreshToken = refreshToken
	result.Data = account.Sanitize()
	return result, nil
}

func (s *Auther) emit(ctx context.Context, eventType ActivityEventType, accountID string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	event := ActivityEvent{
		EventType:  eventType,
		Actor:      ActorRef{ID: accountID, Type: "account"},
		AccountID:  accountID,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	if err := normalizeActivitySink(s.activity).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}
