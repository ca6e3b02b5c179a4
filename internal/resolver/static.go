package resolver

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// StaticResolver serves public keys from local configuration. The verifier's
// own host key always lives here, so local issuance never touches the
// network.
type StaticResolver struct {
	keys map[string]ed25519.PublicKey
}

// StaticOptions is the inline config of a "static" resolver entry: a map of
// domain to base64url raw Ed25519 public key.
type StaticOptions struct {
	Keys map[string]string `mapstructure:"keys"`
}

func NewStatic(known map[string]ed25519.PublicKey) *StaticResolver {
	if known == nil {
		known = make(map[string]ed25519.PublicKey)
	}
	return &StaticResolver{keys: known}
}

// Add registers a key for a domain.
func (s *StaticResolver) Add(domain string, key ed25519.PublicKey) {
	s.keys[domain] = key
}

// AddEncoded registers a base64url raw key for a domain.
func (s *StaticResolver) AddEncoded(domain, encoded string) error {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decoding key for %q: %w", domain, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return fmt.Errorf("key for %q has %d bytes, want %d", domain, len(raw), ed25519.PublicKeySize)
	}
	s.Add(domain, ed25519.PublicKey(raw))
	return nil
}

// Knows reports whether a key for the domain is locally configured.
func (s *StaticResolver) Knows(domain string) bool {
	_, ok := s.keys[domain]
	return ok
}

func (s *StaticResolver) ResolveKey(_ context.Context, domain string) (ed25519.PublicKey, error) {
	key, ok := s.keys[domain]
	if !ok {
		return nil, fmt.Errorf("no static key for domain %q", domain)
	}
	return key, nil
}
