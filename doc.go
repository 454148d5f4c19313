// Package auth implements the authentication and credential-lifecycle core
// for the commerce API: account registration with email verification,
// password login, access/refresh token issuance, password reset via
// single-use tokens, OAuth login bridging, and password-change invalidation.
//
// Account lifecycle:
//   - Accounts move through verification (unverified -> verified), credential
//     (has-password -> reset-pending -> has-password), and activity
//     (active -> inactive) concerns. The Lifecycle component centralizes
//     every transition, computes derived fields such as the
//     PasswordChangedAt watermark, and applies them through single atomic
//     conditional store updates so concurrent attempts cannot both succeed.
//
// Tokens:
//   - Access and refresh tokens are stateless signed JWTs with independent
//     secrets and lifetimes. Verification recovers the issued-at instant so
//     callers can apply the password-change watermark.
//   - Verification and reset links carry opaque single-use tokens: random
//     secrets whose SHA-256 digest is the only value persisted.
//
// Collaborators:
//   - CredentialStore persists accounts. A Bun-backed implementation ships
//     with the package; tests substitute an in-memory fake.
//   - Notifier delivers verification and reset emails. Failures propagate to
//     the caller except on the enumeration-safe forgot-password path.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     Lifecycle to describe signup, login, verification, and password reset
//     events. Sinks run best-effort (errors are logged) so you can forward
//     to a database or queue without blocking authentication.
package auth
