package resolver

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/rhaphazard/browserid/internal/config"
	"github.com/rhaphazard/browserid/internal/core"
)

func mustKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return pub
}

// countingResolver fails every lookup and counts how often it was consulted.
type countingResolver struct {
	calls int
}

func (c *countingResolver) ResolveKey(context.Context, string) (ed25519.PublicKey, error) {
	c.calls++
	return nil, errors.New("lookup failed")
}

func TestRegistryLocalFirst(t *testing.T) {
	hostKey := mustKey(t)
	remote := &countingResolver{}
	reg := NewRegistry("login.example.com", NewStatic(map[string]ed25519.PublicKey{"login.example.com": hostKey}), remote, true)

	key, err := reg.ResolveKey(context.Background(), "login.example.com")
	if err != nil {
		t.Fatalf("ResolveKey() error = %v", err)
	}
	if !hostKey.Equal(key) {
		t.Error("resolved key is not the local host key")
	}
	if remote.calls != 0 {
		t.Errorf("remote consulted %d times for a local domain, want 0", remote.calls)
	}
}

func TestRegistryPrimariesDisabled(t *testing.T) {
	remote := &countingResolver{}
	reg := NewRegistry("login.example.com", NewStatic(map[string]ed25519.PublicKey{"login.example.com": mustKey(t)}), remote, false)

	_, err := reg.ResolveKey(context.Background(), "mail.example")
	if core.KindOf(err) != core.UntrustedIssuerPolicy {
		t.Errorf("ResolveKey() error = %v, want kind %q", err, core.UntrustedIssuerPolicy)
	}
	// the policy must short-circuit before any network attempt
	if remote.calls != 0 {
		t.Errorf("remote consulted %d times while primaries are disabled, want 0", remote.calls)
	}
}

func TestRegistryPrimariesDisabledIgnoresStaticPeers(t *testing.T) {
	hostKey := mustKey(t)
	local := NewStatic(map[string]ed25519.PublicKey{
		"login.example.com": hostKey,
		"mail.example":      mustKey(t),
	})
	reg := NewRegistry("login.example.com", local, nil, false)

	// a statically configured peer is still a non-local issuer: the gate
	// applies before any lookup
	_, err := reg.ResolveKey(context.Background(), "mail.example")
	if core.KindOf(err) != core.UntrustedIssuerPolicy {
		t.Errorf("ResolveKey() error = %v, want kind %q", err, core.UntrustedIssuerPolicy)
	}

	// only the host itself stays resolvable
	key, err := reg.ResolveKey(context.Background(), "login.example.com")
	if err != nil {
		t.Fatalf("ResolveKey(host) error = %v", err)
	}
	if !hostKey.Equal(key) {
		t.Error("resolved key is not the host key")
	}
}

func TestRegistryRemoteFailureIsClassified(t *testing.T) {
	remote := &countingResolver{}
	reg := NewRegistry("login.example.com", nil, remote, true)

	_, err := reg.ResolveKey(context.Background(), "mail.example")
	if core.KindOf(err) != core.KeyResolutionFailure {
		t.Errorf("ResolveKey() error = %v, want kind %q", err, core.KeyResolutionFailure)
	}
	if remote.calls != 1 {
		t.Errorf("remote consulted %d times, want 1", remote.calls)
	}
}

func TestRegistryNoRemoteConfigured(t *testing.T) {
	reg := NewRegistry("login.example.com", nil, nil, true)

	_, err := reg.ResolveKey(context.Background(), "mail.example")
	if core.KindOf(err) != core.KeyResolutionFailure {
		t.Errorf("ResolveKey() error = %v, want kind %q", err, core.KeyResolutionFailure)
	}
}

func TestBuild(t *testing.T) {
	hostKey := mustKey(t)
	peerKey := mustKey(t)

	cfgs := []config.ResolverConfig{
		{
			Name: "peers",
			Type: "static",
			Config: map[string]any{
				"keys": map[string]any{
					"mail.example": base64.RawURLEncoding.EncodeToString(peerKey),
				},
			},
		},
		{
			Name: "primaries",
			Type: "wellknown",
			Config: map[string]any{
				"timeout": "2s",
				"path":    "/.well-known/browserid",
			},
		},
	}

	reg, err := Build(cfgs, "login.example.com", hostKey, true)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	key, err := reg.ResolveKey(context.Background(), "mail.example")
	if err != nil {
		t.Fatalf("ResolveKey() error = %v", err)
	}
	if !peerKey.Equal(key) {
		t.Error("static peer key not registered")
	}
	if reg.remote == nil {
		t.Error("wellknown resolver not built")
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfgs []config.ResolverConfig
	}{
		{
			name: "unknown type",
			cfgs: []config.ResolverConfig{{Name: "x", Type: "dns"}},
		},
		{
			name: "bad static key",
			cfgs: []config.ResolverConfig{{
				Name:   "peers",
				Type:   "static",
				Config: map[string]any{"keys": map[string]any{"mail.example": "@@@"}},
			}},
		},
		{
			name: "two wellknown resolvers",
			cfgs: []config.ResolverConfig{
				{Name: "a", Type: "wellknown", Config: map[string]any{}},
				{Name: "b", Type: "wellknown", Config: map[string]any{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.cfgs, "login.example.com", mustKey(t), true); err == nil {
				t.Error("Build() expected error, got nil")
			}
		})
	}
}
