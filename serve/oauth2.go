package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2IntrospectionStrategy authenticates machine-to-machine callers
// that present an upstream-issued opaque token: the service itself
// obtains a client-credentials token to call the issuer's RFC 7662
// introspection endpoint, then trusts its verdict.
type OAuth2IntrospectionStrategy struct {
	config           clientcredentials.Config
	introspectionURL string
}

type introspectionResponse struct {
	Active bool   `json:"active"`
	Sub    string `json:"sub"`
	Scope  string `json:"scope"`
}

// NewOAuth2IntrospectionStrategy builds a strategy calling introspectionURL
// with a token minted from config's client credentials.
func NewOAuth2IntrospectionStrategy(config clientcredentials.Config, introspectionURL string) *OAuth2IntrospectionStrategy {
	return &OAuth2IntrospectionStrategy{config: config, introspectionURL: introspectionURL}
}

func (s *OAuth2IntrospectionStrategy) Authenticate(ctx context.Context, r *http.Request) (*AuthContext, error) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, nil
	}

	client := s.config.Client(ctx)
	resp, err := client.PostForm(s.introspectionURL, url.Values{"token": {token}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if !parsed.Active {
		return nil, nil
	}

	auth := &AuthContext{Subject: parsed.Sub}
	if parsed.Scope != "" {
		auth.Scopes = strings.Split(parsed.Scope, " ")
	}
	return auth, nil
}
