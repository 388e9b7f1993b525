// Package secure resolves provider credentials from the environment and the OS keychain.
// Environment variables win so CI and one-off runs never touch the keychain.
package secure

import (
	"os"
	"strings"
	"sync"

	"specforge/cli/internal/keychain"

	"go.uber.org/zap"
)

// Credential identifies one provider secret.
type Credential struct {
	// Env is the environment variable consulted first.
	Env string
	// Key is the keychain entry consulted second.
	Key string
}

var (
	Anthropic = Credential{Env: "ANTHROPIC_API_KEY", Key: keychain.KeyAnthropicAPIKey}
	OpenAI    = Credential{Env: "OPENAI_API_KEY", Key: keychain.KeyOpenAIAPIKey}
	Cursor    = Credential{Env: "CURSOR_API_KEY", Key: keychain.KeyCursorAPIKey}
)

// Store is the subset of the keychain manager the resolver needs.
type Store interface {
	Get(key string) (string, error)
}

// Resolver looks credentials up and caches keychain hits for the life of the process.
type Resolver struct {
	lookupEnv func(string) (string, bool)
	store     func() (Store, error)

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver returns a resolver backed by the process environment and the global keychain.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{
		lookupEnv: os.LookupEnv,
		store: func() (Store, error) {
			return keychain.GetManager(logger)
		},
		cache: make(map[string]string),
	}
}

// NewResolverWith builds a resolver over explicit sources. A nil store disables the keychain.
func NewResolverWith(lookupEnv func(string) (string, bool), store Store) *Resolver {
	r := &Resolver{lookupEnv: lookupEnv, cache: make(map[string]string)}
	if store != nil {
		r.store = func() (Store, error) { return store, nil }
	}
	return r
}

// Lookup returns the secret for c, or "" when neither source has one. Keychain errors
// are treated as absence.
func (r *Resolver) Lookup(c Credential) string {
	if r.lookupEnv != nil {
		if v, ok := r.lookupEnv(c.Env); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache[c.Key]; ok {
		return v
	}
	if r.store == nil {
		return ""
	}
	s, err := r.store()
	if err != nil {
		r.cache[c.Key] = ""
		return ""
	}
	v, err := s.Get(c.Key)
	if err != nil {
		v = ""
	}
	r.cache[c.Key] = v
	return v
}

// Has reports whether a secret is available for c.
func (r *Resolver) Has(c Credential) bool { return r.Lookup(c) != "" }
