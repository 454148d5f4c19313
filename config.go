package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// EnvConfig loads the recognized configuration surface from environment
// variables. It satisfies Config.
type EnvConfig struct {
	AccessTokenSecret     string        `env:"ACCESS_TOKEN_SECRET,notEmpty"`
	AccessTokenExpiresIn  time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN" envDefault:"15m"`
	RefreshTokenSecret    string        `env:"REFRESH_TOKEN_SECRET,notEmpty"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"168h"`
	OpaqueTokenExpiresIn  time.Duration `env:"OPAQUE_TOKEN_EXPIRES_IN" envDefault:"24h"`
	Issuer                string        `env:"TOKEN_ISSUER"`
	Audience              []string      `env:"TOKEN_AUDIENCE"`
}

var _ Config = (*EnvConfig)(nil)

// NewEnvConfig parses configuration from the environment.
func NewEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse auth configuration")
	}
	return cfg, nil
}

func (c *EnvConfig) GetAccessTokenSigningKey() string { return c.AccessTokenSecret }

func (c *EnvConfig) GetAccessTokenExpiration() time.Duration { return c.AccessTokenExpiresIn }

func (c *EnvConfig) GetRefreshTokenSigningKey() string { return c.RefreshTokenSecret }

func (c *EnvConfig) GetRefreshTokenExpiration() time.Duration { return c.RefreshTokenExpiresIn }

func (c *EnvConfig) GetOpaqueTokenExpiration() time.Duration {
	if c.OpaqueTokenExpiresIn <= 0 {
		return 24 * time.Hour
	}
	return c.OpaqueTokenExpiresIn
}

func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func (c *EnvConfig) GetAudience() []string { return c.Audience }
