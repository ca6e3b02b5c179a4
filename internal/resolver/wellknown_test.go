package resolver

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rhaphazard/browserid/internal/keys"
)

func TestWellKnownResolveKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultWellKnownPath {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"public-key": keys.EncodePublicKey(pub),
		})
	}))
	defer srv.Close()

	// the httptest listener address stands in for the primary domain
	domain := strings.TrimPrefix(srv.URL, "http://")

	r := NewWellKnown(WellKnownOptions{Insecure: true})
	got, err := r.ResolveKey(context.Background(), domain)
	if err != nil {
		t.Fatalf("ResolveKey() error = %v", err)
	}
	if !pub.Equal(got) {
		t.Error("resolved key differs from published key")
	}
}

func TestWellKnownResolveKeyErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
		},
		{
			name: "invalid document",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
		},
		{
			name: "wrong algorithm",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"public-key": map[string]string{"algorithm": "RS256", "key": "AAAA"},
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			domain := strings.TrimPrefix(srv.URL, "http://")
			r := NewWellKnown(WellKnownOptions{Insecure: true})
			if _, err := r.ResolveKey(context.Background(), domain); err == nil {
				t.Error("ResolveKey() expected error, got nil")
			}
		})
	}
}

func TestWellKnownUnreachableDomain(t *testing.T) {
	r := NewWellKnown(WellKnownOptions{Insecure: true})
	// reserved port 0 never accepts connections
	if _, err := r.ResolveKey(context.Background(), "127.0.0.1:0"); err == nil {
		t.Error("ResolveKey() expected error for unreachable domain")
	}
}
