package auth

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal leveled logger used across the package.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the options the token codec and lifecycle need to operate.
type Config interface {
	GetAccessTokenSigningKey() string
	GetAccessTokenExpiration() time.Duration
	GetRefreshTokenSigningKey() string
	GetRefreshTokenExpiration() time.Duration
	GetOpaqueTokenExpiration() time.Duration
	GetIssuer() string
	GetAudience() []string
}

// Notifier delivers verification and reset emails carrying the plaintext
// single-use token. Implementations are external collaborators; errors must
// surface as call failures.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, name, email, token string) error
	SendPasswordResetEmail(ctx context.Context, name, email, token string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
