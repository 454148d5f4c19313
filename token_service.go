package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService mints and verifies the two stateless signed token types.
// Verification returns a typed error for expiry and tamper cases; it never
// panics, and callers translate failures into authentication errors.
type TokenService interface {
	IssueAccessToken(account *Account) (string, error)
	IssueRefreshToken(id uuid.UUID) (string, error)
	VerifyAccessToken(token string) (*AccessClaims, error)
	VerifyRefreshToken(token string) (*RefreshClaims, error)
}

// TokenServiceImpl implements TokenService with HMAC-signed JWTs. Access and
// refresh tokens use independent signing keys and lifetimes.
type TokenServiceImpl struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a TokenService from the given configuration.
func NewTokenService(cfg Config, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		accessKey:  []byte(cfg.GetAccessTokenSigningKey()),
		refreshKey: []byte(cfg.GetRefreshTokenSigningKey()),
		accessTTL:  cfg.GetAccessTokenExpiration(),
		refreshTTL: cfg.GetRefreshTokenExpiration(),
		issuer:     cfg.GetIssuer(),
		audience:   cfg.GetAudience(),
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source (useful for tests).
func (ts *TokenServiceImpl) WithClock(clock func() time.Time) *TokenServiceImpl {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// IssueAccessToken mints a short-lived token embedding the account's profile
// claims. The issue time is recoverable at verification so callers can apply
// the password-change watermark.
func (ts *TokenServiceImpl) IssueAccessToken(account *Account) (string, error) {
	if account == nil {
		return "", goerrors.New("account must not be nil", goerrors.CategoryInternal)
	}

	now := ts.now()
	claims := &AccessClaims{
		RegisteredClaims: ts.registeredClaims(account.ID.String(), now, ts.accessTTL),
		UID:              account.ID.String(),
		Email:            account.Email,
		EmailVerified:    account.EmailVerified,
		Name:             account.Name,
		UserRole:         account.Role,
		Photo:            account.Photo,
	}

	return ts.sign(claims, ts.accessKey)
}

// IssueRefreshToken mints a long-lived token embedding only the account id.
func (ts *TokenServiceImpl) IssueRefreshToken(id uuid.UUID) (string, error) {
	now := ts.now()
	claims := &RefreshClaims{
		RegisteredClaims: ts.registeredClaims(id.String(), now, ts.refreshTTL),
		UID:              id.String(),
	}

	return ts.sign(claims, ts.refreshKey)
}

// VerifyAccessToken parses and validates an access token.
func (ts *TokenServiceImpl) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ts.verify(token, claims, ts.accessKey); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken parses and validates a refresh token.
func (ts *TokenServiceImpl) VerifyRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ts.verify(token, claims, ts.refreshKey); err != nil {
		return nil, err
	}
	return claims, nil
}

func (ts *TokenServiceImpl) registeredClaims(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    ts.issuer,
		Subject:   subject,
		Audience:  aud,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (ts *TokenServiceImpl) sign(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(key)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

func (ts *TokenServiceImpl) verify(tokenString string, claims jwt.Claims, key []byte) error {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token verify encountered unexpected signing method alg=%v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		ts.logger.Error("token verify could not validate claims")
		return ErrTokenMalformed
	}

	return ts.checkAudience(claims)
}

// checkAudience requires the token to carry every configured audience; the
// parser's built-in check only covers a single value.
func (ts *TokenServiceImpl) checkAudience(claims jwt.Claims) error {
	if len(ts.audience) == 0 {
		return nil
	}

	aud, err := claims.GetAudience()
	if err != nil {
		return ErrTokenMalformed
	}

	for _, want := range ts.audience {
		found := false
		for _, got := range aud {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			ts.logger.Error("token verify audience mismatch want=%s", want)
			return ErrTokenMalformed
		}
	}

	return nil
}
