package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the payload of an access token. Profile fields are opaque
// pass-through data; only the subject and issue time matter to this package.
type AccessClaims struct {
	jwt.RegisteredClaims
	UID           string      `json:"uid,omitempty"`
	Email         string      `json:"email,omitempty"`
	EmailVerified bool        `json:"email_verified"`
	Name          string      `json:"name,omitempty"`
	UserRole      AccountRole `json:"role,omitempty"`
	Photo         string      `json:"photo,omitempty"`
}

// UserID returns the token subject, preferring the uid claim.
func (c *AccessClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// AccountID parses the token subject as an account id.
func (c *AccessClaims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID())
}

// Issued returns the issue time recovered from the token, or the zero time
// when the claim is absent.
func (c *AccessClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expires returns the expiration time, or the zero time when absent.
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// RefreshClaims is the payload of a refresh token: the account id only.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// UserID returns the token subject, preferring the uid claim.
func (c *RefreshClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// AccountID parses the token subject as an account id.
func (c *RefreshClaims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID())
}

// Issued returns the issue time recovered from the token, or the zero time
// when the claim is absent.
func (c *RefreshClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
