package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/smallbiznis/jobboard/internal/domain"
)

const minSecretLen = 16

var (
	// ErrInvalidToken is returned for any token that fails parsing, signature
	// verification or claim validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakSecret is returned when the signing secret is too short for HS256.
	ErrWeakSecret = errors.New("jwt secret must be at least 16 bytes")
)

// Generator signs and validates access tokens with a shared HS256 secret.
type Generator struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator constructs a JWT generator.
func NewGenerator(secret, issuer string, accessTTL time.Duration, opts ...Option) (*Generator, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive, got %s", accessTTL)
	}
	g := &Generator{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// AccessTokenClaims is the private claim set carried by access tokens.
type AccessTokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// GenerateAccessToken produces a signed JWT for the user.
func (g *Generator) GenerateAccessToken(user domain.User) (string, error) {
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: g.secret},
		(&gojose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := g.now().UTC()
	subject := strconv.FormatInt(user.ID, 10)
	stdClaims := gojwt.Claims{
		Subject:   subject,
		Issuer:    g.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(g.accessTTL)),
		NotBefore: gojwt.NewNumericDate(now),
	}
	custom := AccessTokenClaims{
		UserID: subject,
		Role:   string(user.Role),
	}

	token, err := gojwt.Signed(signer).Claims(stdClaims).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}
	return token, nil
}

// ValidateAccessToken verifies the token and returns the identity it carries.
func (g *Generator) ValidateAccessToken(token string) (domain.Identity, error) {
	parsed, err := gojwt.ParseSigned(token, []gojose.SignatureAlgorithm{gojose.HS256})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: parse: %v", ErrInvalidToken, err)
	}

	var (
		std    gojwt.Claims
		custom AccessTokenClaims
	)
	if err := parsed.Claims(g.secret, &std, &custom); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: verify: %v", ErrInvalidToken, err)
	}

	expected := gojwt.Expected{Issuer: g.issuer, Time: g.now()}
	if err := std.ValidateWithLeeway(expected, 0); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: claims: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	role, ok := domain.ParseRole(custom.Role)
	if !ok {
		return domain.Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, custom.Role)
	}
	return domain.Identity{UserID: userID, Role: role}, nil
}

// TTL is the lifetime applied to new access tokens.
func (g *Generator) TTL() time.Duration {
	return g.accessTTL
}
