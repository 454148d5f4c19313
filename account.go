package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountRole is the account's role, embedded in access tokens as an opaque
// claim. Enforcement is the caller's concern, not this package's.
type AccountRole = string

const (
	// RoleUser is the default role for self-registered accounts.
	RoleUser AccountRole = "user"
	// RoleAdmin marks staff accounts.
	RoleAdmin AccountRole = "admin"
)

// Account is the aggregate root for authentication state.
//
// PasswordHash is empty for accounts provisioned through an identity
// provider; those accounts are rejected by every password flow.
// The token hash/expiry pairs hold at most one pending single-use token per
// concern, cleared in the same mutation that consumes them.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID           uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name         string      `bun:"name,notnull" json:"name,omitempty"`
	Email        string      `bun:"email,notnull,unique" json:"email,omitempty"`
	Role         AccountRole `bun:"account_role,notnull" json:"account_role,omitempty"`
	Photo        string      `bun:"photo" json:"photo,omitempty"`
	PasswordHash string      `bun:"password_hash" json:"-"`

	EmailVerified              bool       `bun:"email_verified,notnull" json:"email_verified"`
	EmailVerificationTokenHash []byte     `bun:"email_verification_token_hash" json:"-"`
	EmailVerificationExpiresAt *time.Time `bun:"email_verification_expires_at,nullzero" json:"-"`

	PasswordResetTokenHash []byte     `bun:"password_reset_token_hash" json:"-"`
	PasswordResetExpiresAt *time.Time `bun:"password_reset_expires_at,nullzero" json:"-"`

	// PasswordChangedAt is the security watermark: tokens issued before it
	// are rejected.
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"-"`

	Active    bool       `bun:"active,notnull" json:"active"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasLocalPassword reports whether the account can take part in password
// flows. Provider-provisioned accounts have no local password.
func (a *Account) HasLocalPassword() bool {
	return a != nil && a.PasswordHash != ""
}

// ChangedPasswordAfter reports whether the password changed after the given
// token issue time. Comparison runs at whole-second granularity to match the
// precision of the JWT iat claim.
func (a *Account) ChangedPasswordAfter(issuedAt time.Time) bool {
	if a == nil || a.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < a.PasswordChangedAt.Unix()
}

// HasPendingVerification reports whether a verification cycle is open.
func (a *Account) HasPendingVerification() bool {
	return a != nil && len(a.EmailVerificationTokenHash) > 0
}

// HasPendingReset reports whether a password reset cycle is open.
func (a *Account) HasPendingReset() bool {
	return a != nil && len(a.PasswordResetTokenHash) > 0
}

// EnsureDefaults backfills identity and role before the first persist.
func (a *Account) EnsureDefaults() {
	if a == nil {
		return
	}
	if a.Role == "" {
		a.Role = RoleUser
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Email = NormalizeEmail(a.Email)
}

// Sanitize strips credential material for embedding in result envelopes.
func (a *Account) Sanitize() *AccountData {
	if a == nil {
		return nil
	}
	return &AccountData{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          a.Role,
		Photo:         a.Photo,
		EmailVerified: a.EmailVerified,
	}
}

// AccountData is the caller-visible projection of an account. It never
// carries hashes, pending tokens, or watermarks.
type AccountData struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name,omitempty"`
	Email         string      `json:"email"`
	Role          AccountRole `json:"role,omitempty"`
	Photo         string      `json:"photo,omitempty"`
	EmailVerified bool        `json:"email_verified"`
}

// NormalizeEmail lower-cases and trims an email so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
