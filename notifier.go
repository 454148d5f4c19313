package auth

import (
	"context"
)

// LogNotifier writes notification links to the logger instead of sending
// email. Intended for development and tests.
type LogNotifier struct {
	logger Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier that logs instead of sending.
func NewLogNotifier(logger Logger) *LogNotifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerificationEmail(ctx context.Context, name, email, token string) error {
	n.logger.Info("verification email to=%s name=%s link=/verify-email/%s", email, name, token)
	return nil
}

func (n *LogNotifier) SendPasswordResetEmail(ctx context.Context, name, email, token string) error {
	n.logger.Info("password reset email to=%s name=%s link=/reset-password/%s", email, name, token)
	return nil
}
