package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/jobboard/internal/domain"
	"github.com/smallbiznis/jobboard/internal/http/response"
	"github.com/smallbiznis/jobboard/internal/service"
)

const identityKey = "identity"

type identityCtxKey struct{}

// TokenAuthenticator resolves a bearer token into an identity.
type TokenAuthenticator interface {
	Authenticate(token string) (domain.Identity, error)
}

// Auth validates the Authorization header and attaches the caller identity.
// Role and ownership checks are left to the services.
type Auth struct {
	Authenticator TokenAuthenticator
}

// NewAuth constructs the middleware.
func NewAuth(authenticator TokenAuthenticator) *Auth {
	return &Auth{Authenticator: authenticator}
}

// ValidateJWT rejects requests without a valid bearer token.
func (m *Auth) ValidateJWT(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		response.AbortWith(c, service.KindUnauthenticated, "authorization token required")
		return
	}

	identity, err := m.Authenticator.Authenticate(token)
	if err != nil {
		response.AbortWith(c, service.KindInvalidToken, "invalid or expired token")
		return
	}

	c.Set(identityKey, identity)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
	c.Next()
}

// GetIdentity returns the identity attached by ValidateJWT.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}

// WithIdentity stores the identity on a request context.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFromContext reads the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return identity, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
