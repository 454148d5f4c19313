package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeEmailTaken signals a signup attempt with a registered email.
	TextCodeEmailTaken = "EMAIL_ALREADY_REGISTERED"
	// TextCodeInvalidCreds covers every login credential mismatch.
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeWrongPassword covers a failed change-password old password check.
	TextCodeWrongPassword = "WRONG_PASSWORD"
	// TextCodeTokenInvalid covers invalid or expired single-use tokens.
	TextCodeTokenInvalid = "TOKEN_INVALID_OR_EXPIRED"
	// TextCodeTokenExpired covers expired signed tokens.
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed covers tampered or undecodable signed tokens.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeEmailUnverified signals a login against an unverified account.
	TextCodeEmailUnverified = "EMAIL_NOT_VERIFIED"
	// TextCodeNoLocalPassword signals a password flow on a provider account.
	TextCodeNoLocalPassword = "NO_LOCAL_PASSWORD"
	// TextCodeAccountGone signals a token that references a missing account.
	TextCodeAccountGone = "ACCOUNT_GONE"
	// TextCodePasswordChanged signals a token older than the password watermark.
	TextCodePasswordChanged = "PASSWORD_CHANGED"
	// TextCodeEmptyPassword signals an empty string given to the hasher.
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
)

// ErrEmailTaken is returned when a signup email is already registered.
var ErrEmailTaken = goerrors.New(
	"this email is already registered, use a different email or log in",
	goerrors.CategoryConflict,
).WithTextCode(TextCodeEmailTaken).WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is the uniform login failure. It never reveals
// whether the email exists, the account has no local password, or the
// password was wrong.
var ErrInvalidCredentials = goerrors.New(
	"invalid email or password",
	goerrors.CategoryAuth,
).WithTextCode(TextCodeInvalidCreds).WithCode(goerrors.CodeUnauthorized)

// ErrWrongPassword is returned when the old password given to
// change-password does not match the stored hash.
var ErrWrongPassword = goerrors.New(
	"the provided password is wrong",
	goerrors.CategoryAuth,
).WithTextCode(TextCodeWrongPassword).WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid covers both a missing and an expired single-use token so
// callers cannot distinguish the two causes.
var ErrTokenInvalid = goerrors.New(
	"token is invalid or has expired",
	goerrors.CategoryAuth,
).WithTextCode(TextCodeTokenInvalid).WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for signed tokens past their lifetime.
var ErrTokenExpired = goerrors.New(
	"token is expired",
	goerrors.CategoryAuth,
).WithTextCode(TextCodeTokenExpired).WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tampered or undecodable signed tokens.
var ErrTokenMalformed = goerrors.New(
	"token is malformed",
	goerrors.CategoryAuth,
).WithTextCode(TextCodeTokenMalformed).WithCode(goerrors.CodeUnauthorized)

// ErrEmailNotVerified is returned from login while the account is still
// unverified. Login restarts the verification cycle before returning it.
var ErrEmailNotVerified = goerrors.New(
	"your email is not verified, check your email for the verification link",
	goerrors.CategoryAuth,
).WithTextCode(TextCodeEmailUnverified).WithCode(goerrors.CodeForbidden)

// ErrNoLocalPassword is returned when a password reset is requested for an
// account provisioned by an identity provider. Deliberately explicit: there
// is no password to reset, so no email pretence is warranted.
var ErrNoLocalPassword = goerrors.New(
	"password reset is not available for provider login accounts",
	goerrors.CategoryBadInput,
).WithTextCode(TextCodeNoLocalPassword).WithCode(goerrors.CodeBadRequest)

// ErrAccountGone is returned when a verified token references an account
// that no longer exists or was deactivated.
var ErrAccountGone = goerrors.New(
	"the account belonging to this token no longer exists",
	goerrors.CategoryAuth,
).WithTextCode(TextCodeAccountGone).WithCode(goerrors.CodeUnauthorized)

// ErrPasswordChanged is returned when a token was issued before the
// account's password-change watermark.
var ErrPasswordChanged = goerrors.New(
	"password was changed recently, log in again",
	goerrors.CategoryAuth,
).WithTextCode(TextCodePasswordChanged).WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString is returned by the password hasher for empty input.
var ErrNoEmptyString = goerrors.New(
	"password must not be empty",
	goerrors.CategoryValidation,
).WithTextCode(TextCodeEmptyPassword).WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword wraps a bcrypt comparison failure.
var ErrMismatchedHashAndPassword = goerrors.New(
	"the credentials provided are invalid",
	goerrors.CategoryAuth,
).WithTextCode(TextCodeInvalidCreds).WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotFound is the storage-level miss. The orchestrator translates
// it before it can reach a caller; user-visible paths never surface it.
var ErrAccountNotFound = goerrors.New(
	"account not found",
	goerrors.CategoryNotFound,
).WithCode(goerrors.CodeNotFound)

// IsUnauthorized reports whether err resolves to an authentication failure.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}

// IsConflict reports whether err resolves to a duplicate resource failure.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}

// IsBadRequest reports whether err resolves to a structurally invalid request.
func IsBadRequest(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryBadInput ||
			richErr.Category == goerrors.CategoryValidation
	}
	return false
}
