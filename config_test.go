package auth_test

import (
	"testing"
	"time"

	auth "github.com/zeyadwaleed003/commerce-auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvConfig(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRES_IN", "30m")
	t.Setenv("TOKEN_ISSUER", "commerce-auth")
	t.Setenv("TOKEN_AUDIENCE", "commerce-api")

	cfg, err := auth.NewEnvConfig()
	require.NoError(t, err)

	assert.Equal(t, "access-secret", cfg.GetAccessTokenSigningKey())
	assert.Equal(t, "refresh-secret", cfg.GetRefreshTokenSigningKey())
	assert.Equal(t, 30*time.Minute, cfg.GetAccessTokenExpiration())
	assert.Equal(t, "commerce-auth", cfg.GetIssuer())
	assert.Equal(t, []string{"commerce-api"}, cfg.GetAudience())
}

func TestNewEnvConfigDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")

	cfg, err := auth.NewEnvConfig()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.GetAccessTokenExpiration())
	assert.Equal(t, 168*time.Hour, cfg.GetRefreshTokenExpiration())
	assert.Equal(t, 24*time.Hour, cfg.GetOpaqueTokenExpiration())
}

func TestNewEnvConfigMissingSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")

	_, err := auth.NewEnvConfig()
	assert.Error(t, err)
}
