package dwp

import (
	"context"
	"crypto/subtle"
	"slices"

	"github.com/xraph/dialog"
)

// Identity represents an authenticated worker.
type Identity struct {
	// Subject names the worker or service.
	Subject string `json:"subject"`

	// Namespaces lists the namespaces the worker may serve. Empty or "*"
	// allows any namespace.
	Namespaces []string `json:"namespaces,omitempty"`
}

// Allows reports whether the identity may register under namespace.
func (id *Identity) Allows(namespace string) bool {
	if len(id.Namespaces) == 0 {
		return true
	}
	return slices.Contains(id.Namespaces, "*") || slices.Contains(id.Namespaces, namespace)
}

// Authenticator validates credentials and returns an identity.
// Failures wrap dialog.ErrUnauthorized.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// ── Shared secret authenticator ─────────────────────

// SharedSecretAuthenticator accepts workers presenting one shared secret.
type SharedSecretAuthenticator struct {
	secret []byte
}

// NewSharedSecretAuthenticator creates an authenticator for secret.
func NewSharedSecretAuthenticator(secret string) *SharedSecretAuthenticator {
	return &SharedSecretAuthenticator{secret: []byte(secret)}
}

func (a *SharedSecretAuthenticator) Authenticate(_ context.Context, token string) (*Identity, error) {
	if subtle.ConstantTimeCompare([]byte(token), a.secret) != 1 {
		return nil, dialog.ErrUnauthorized
	}
	return &Identity{Subject: "worker"}, nil
}

// ── API Key authenticator ───────────────────────────

// APIKeyEntry maps a token to an identity.
type APIKeyEntry struct {
	Token    string
	Identity Identity
}

// APIKeyAuthenticator validates per-worker keys against a static list.
type APIKeyAuthenticator struct {
	keys map[string]*Identity
}

// NewAPIKeyAuthenticator creates an API key authenticator.
func NewAPIKeyAuthenticator(entries ...APIKeyEntry) *APIKeyAuthenticator {
	keys := make(map[string]*Identity, len(entries))
	for _, e := range entries {
		id := e.Identity
		keys[e.Token] = &id
	}
	return &APIKeyAuthenticator{keys: keys}
}

func (a *APIKeyAuthenticator) Authenticate(_ context.Context, token string) (*Identity, error) {
	id, ok := a.keys[token]
	if !ok {
		return nil, dialog.ErrUnauthorized
	}
	return id, nil
}

// ── No-op authenticator ─────────────────────────────

// NoopAuthenticator accepts all tokens for any namespace.
// Use for development only.
type NoopAuthenticator struct{}

func (a *NoopAuthenticator) Authenticate(_ context.Context, _ string) (*Identity, error) {
	return &Identity{Subject: "anonymous"}, nil
}

// ── Composite authenticator ─────────────────────────

// CompositeAuthenticator tries multiple authenticators in order.
// The first successful authentication wins.
type CompositeAuthenticator struct {
	authenticators []Authenticator
}

// NewCompositeAuthenticator chains multiple authenticators.
func NewCompositeAuthenticator(auths ...Authenticator) *CompositeAuthenticator {
	return &CompositeAuthenticator{authenticators: auths}
}

func (c *CompositeAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	for _, auth := range c.authenticators {
		id, err := auth.Authenticate(ctx, token)
		if err == nil {
			return id, nil
		}
	}
	return nil, dialog.ErrUnauthorized
}
