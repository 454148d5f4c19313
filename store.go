package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialStore is the narrow persistence interface the core depends on.
// Its storage engine is a collaborator concern; a Bun-backed implementation
// lives in this package and tests substitute an in-memory fake.
//
// Every lookup excludes inactive accounts: a deactivated account is
// invisible to authentication. Lookups that miss return ErrAccountNotFound.
//
// MarkEmailVerified and ApplyPasswordReset are the atomic conditional
// updates the lifecycle guards require: the token-hash match and the
// not-expired check apply in the same statement as the mutation, so two
// concurrent attempts with the same token cannot both succeed.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByVerificationTokenHash(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*Account, error)
	FindByResetTokenHash(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*Account, error)

	CreateAccount(ctx context.Context, account *Account) (*Account, error)

	// SetVerificationToken opens (or restarts) a verification cycle,
	// overwriting any pending token for the account.
	SetVerificationToken(ctx context.Context, id uuid.UUID, hash []byte, expiresAt time.Time) error

	// MarkEmailVerified flips email_verified and clears the pending
	// verification pair, only when hash matches an unexpired pending token.
	MarkEmailVerified(ctx context.Context, hash []byte, notExpiredBefore time.Time) (*Account, error)

	// SetResetToken opens (or restarts) a reset cycle, overwriting any
	// pending token for the account.
	SetResetToken(ctx context.Context, id uuid.UUID, hash []byte, expiresAt time.Time) error

	// ApplyPasswordReset replaces the password hash, bumps the watermark,
	// and clears the pending reset pair, only when hash matches an unexpired
	// pending token.
	ApplyPasswordReset(ctx context.Context, hash []byte, notExpiredBefore time.Time, passwordHash string, changedAt time.Time) (*Account, error)

	// UpdatePassword replaces the password hash and bumps the watermark for
	// an authenticated change; any pending reset pair is cleared in the same
	// update.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error

	// Deactivate soft-deletes the account: the record persists but becomes
	// invisible to every lookup on this interface.
	Deactivate(ctx context.Context, id uuid.UUID) error
}
