package auth_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	auth "github.com/zeyadwaleed003/commerce-auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	quietLogger
	lines []string
}

func (l *recordingLogger) Info(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestLogNotifier(t *testing.T) {
	ctx := context.Background()
	logger := &recordingLogger{}
	notifier := auth.NewLogNotifier(logger)

	require.NoError(t, notifier.SendVerificationEmail(ctx, "Ada", "ada@example.com", "tok-verify"))
	require.NoError(t, notifier.SendPasswordResetEmail(ctx, "Ada", "ada@example.com", "tok-reset"))

	require.Len(t, logger.lines, 2)
	assert.True(t, strings.Contains(logger.lines[0], "/verify-email/tok-verify"))
	assert.True(t, strings.Contains(logger.lines[1], "/reset-password/tok-reset"))
}
