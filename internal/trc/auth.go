package trc

import "net/http"

// AuthConfig decorates outgoing requests with credentials.
type AuthConfig interface {
	Apply(req *http.Request)
}

// NoAuth sends requests without credentials.
type NoAuth struct{}

func (NoAuth) Apply(*http.Request) {}

// BearerToken uses the host's bearer token authentication.
type BearerToken struct {
	Token string
}

// Apply adds the Authorization header when a token is set.
func (a BearerToken) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// AuthFromToken picks BearerToken for a non-empty token and NoAuth otherwise.
func AuthFromToken(token string) AuthConfig {
	if token == "" {
		return NoAuth{}
	}
	return BearerToken{Token: token}
}
