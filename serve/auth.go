package serve

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthStrategy attempts to produce an AuthContext from a request.
// Authenticate returns (nil, nil) when the strategy has no opinion (e.g.
// the expected header is absent), letting the next strategy try; it
// returns a non-nil error only for a malformed credential it does
// recognize (an expired or ill-formed bearer token).
type AuthStrategy interface {
	Authenticate(ctx context.Context, r *http.Request) (*AuthContext, error)
}

// BearerStrategy is a static allow-list of opaque bearer tokens to
// AuthContext, for service-to-service callers provisioned out of band.
type BearerStrategy struct {
	tokens map[string]AuthContext
}

// NewBearerStrategy builds a BearerStrategy from a token-to-context map.
func NewBearerStrategy(tokens map[string]AuthContext) *BearerStrategy {
	return &BearerStrategy{tokens: tokens}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimPrefix(h, prefix), true
}

func (s *BearerStrategy) Authenticate(_ context.Context, r *http.Request) (*AuthContext, error) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, nil
	}
	auth, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	out := auth
	return &out, nil
}

// JWTStrategy verifies a bearer token as a JWT signed with keyFunc,
// reading roles/scopes from its claims.
type JWTStrategy struct {
	keyFunc    jwt.Keyfunc
	rolesClaim string
	scopeClaim string
	parser     *jwt.Parser
}

// JWTOption configures a JWTStrategy.
type JWTOption func(*JWTStrategy)

// WithRolesClaim overrides the default "roles" claim name.
func WithRolesClaim(name string) JWTOption { return func(s *JWTStrategy) { s.rolesClaim = name } }

// WithScopeClaim overrides the default "scope" claim name (a
// space-separated string, per the OAuth2 convention).
func WithScopeClaim(name string) JWTOption { return func(s *JWTStrategy) { s.scopeClaim = name } }

// NewJWTStrategy builds a JWTStrategy verifying tokens with keyFunc (see
// jwt.Keyfunc — typically a fixed HMAC secret or a JWKS lookup).
func NewJWTStrategy(keyFunc jwt.Keyfunc, opts ...JWTOption) *JWTStrategy {
	s := &JWTStrategy{keyFunc: keyFunc, rolesClaim: "roles", scopeClaim: "scope", parser: jwt.NewParser()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *JWTStrategy) Authenticate(_ context.Context, r *http.Request) (*AuthContext, error) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, nil
	}
	claims := jwt.MapClaims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, s.keyFunc)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	auth := &AuthContext{Claims: map[string]any(claims)}
	if sub, ok := claims["sub"].(string); ok {
		auth.Subject = sub
	}
	if raw, ok := claims[s.rolesClaim].([]any); ok {
		for _, r := range raw {
			if role, ok := r.(string); ok {
				auth.Roles = append(auth.Roles, role)
			}
		}
	}
	if raw, ok := claims[s.scopeClaim].(string); ok && raw != "" {
		auth.Scopes = strings.Split(raw, " ")
	}
	return auth, nil
}
