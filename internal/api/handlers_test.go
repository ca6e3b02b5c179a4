package api

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rhaphazard/browserid/internal/audit"
	"github.com/rhaphazard/browserid/internal/bundle"
	"github.com/rhaphazard/browserid/internal/core"
	"github.com/rhaphazard/browserid/internal/keys"
	"github.com/rhaphazard/browserid/internal/policy"
	"github.com/rhaphazard/browserid/internal/service"
	"github.com/rhaphazard/browserid/internal/verifier"
)

const testHost = "login.example.com"

type staticKeys map[string]ed25519.PublicKey

func (s staticKeys) ResolveKey(_ context.Context, domain string) (ed25519.PublicKey, error) {
	key, ok := s[domain]
	if !ok {
		return nil, errors.New("unknown domain " + domain)
	}
	return key, nil
}

func mintWire(t *testing.T, hostPriv ed25519.PrivateKey, email, audience string, expires time.Time) string {
	t.Helper()
	userPub, userPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}

	cert := jwt.NewWithClaims(jwt.SigningMethodEdDSA, bundle.CertificateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testHost,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		PublicKey: keys.EncodePublicKey(userPub),
		Principal: core.Principal{Email: email},
	})
	rawCert, err := cert.SignedString(hostPriv)
	if err != nil {
		t.Fatalf("signing certificate: %v", err)
	}

	assertion := jwt.NewWithClaims(jwt.SigningMethodEdDSA, bundle.AssertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	rawAssertion, err := assertion.SignedString(userPriv)
	if err != nil {
		t.Fatalf("signing assertion: %v", err)
	}

	return bundle.Join([]string{rawCert}, rawAssertion)
}

func newTestServer(t *testing.T, hostPub ed25519.PublicKey, policyExpr string) *httptest.Server {
	t.Helper()
	pol, err := policy.Compile(policyExpr)
	if err != nil {
		t.Fatalf("compiling policy: %v", err)
	}
	v := verifier.New(testHost, staticKeys{testHost: hostPub})
	svc := service.NewVerifyService(v, pol, nil)
	srv := httptest.NewServer(NewServer(svc).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postVerify(t *testing.T, srv *httptest.Server, payload any) (*http.Response, VerifyResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	resp, err := http.Post(srv.URL+VerifyRoute, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("posting verify request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var vr VerifyResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp, vr
}

func TestHandleVerifyOkay(t *testing.T) {
	hostPub, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	srv := newTestServer(t, hostPub, "")

	// jwt numeric dates carry second precision
	expires := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	wire := mintWire(t, hostPriv, "ann@example.com", "https://rp.example", expires)

	resp, vr := postVerify(t, srv, VerifyPayload{Assertion: wire, Audience: "rp.example"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if vr.Status != StatusOkay {
		t.Fatalf("response = %+v, want status okay", vr)
	}
	if vr.Email != "ann@example.com" || vr.Issuer != testHost || vr.Audience != "rp.example" {
		t.Errorf("response = %+v", vr)
	}
	if vr.Expires != expires.UnixMilli() {
		t.Errorf("Expires = %d, want %d", vr.Expires, expires.UnixMilli())
	}
	if resp.Header.Get("X-Correlation-ID") == "" {
		t.Error("missing correlation header")
	}
}

func TestHandleVerifyFailure(t *testing.T) {
	hostPub, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	srv := newTestServer(t, hostPub, "")

	wire := mintWire(t, hostPriv, "ann@example.com", "https://rp.example", time.Now().Add(5*time.Minute))

	// a rejected assertion is still HTTP 200 with status "failure"
	resp, vr := postVerify(t, srv, VerifyPayload{Assertion: wire, Audience: "evil.example"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if vr.Status != StatusFailure {
		t.Fatalf("response = %+v, want status failure", vr)
	}
	if !strings.Contains(vr.Reason, string(core.AudienceMismatch)) {
		t.Errorf("reason = %q, want an audience mismatch", vr.Reason)
	}
}

func TestHandleVerifyPolicyRejection(t *testing.T) {
	hostPub, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	srv := newTestServer(t, hostPub, `email endsWith "@corp.example"`)

	wire := mintWire(t, hostPriv, "ann@example.com", "https://rp.example", time.Now().Add(5*time.Minute))

	resp, vr := postVerify(t, srv, VerifyPayload{Assertion: wire, Audience: "rp.example"})
	if resp.StatusCode != http.StatusOK || vr.Status != StatusFailure {
		t.Fatalf("status = %d, response = %+v", resp.StatusCode, vr)
	}
	if !strings.Contains(vr.Reason, string(core.PolicyRejection)) {
		t.Errorf("reason = %q, want a policy rejection", vr.Reason)
	}
}

func TestHandleVerifyBadRequests(t *testing.T) {
	hostPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	srv := newTestServer(t, hostPub, "")

	tests := []struct {
		name    string
		payload any
	}{
		{name: "missing fields", payload: map[string]string{}},
		{name: "unknown fields", payload: map[string]string{"assertion": "x", "audience": "y", "extra": "z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postVerify(t, srv, tt.payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHandleAuditRecent(t *testing.T) {
	hostPub, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}

	auditor := audit.NewInMemoryAuditor()
	v := verifier.New(testHost, staticKeys{testHost: hostPub})
	svc := service.NewVerifyService(v, nil, auditor)
	srv := httptest.NewServer(NewServer(svc).Routes())
	t.Cleanup(srv.Close)

	wire := mintWire(t, hostPriv, "ann@example.com", "https://rp.example", time.Now().Add(5*time.Minute))
	postVerify(t, srv, VerifyPayload{Assertion: wire, Audience: "rp.example"})
	postVerify(t, srv, VerifyPayload{Assertion: wire, Audience: "evil.example"})

	resp, err := http.Get(srv.URL + AuditRecentRoute)
	if err != nil {
		t.Fatalf("audit request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var entries []core.AuditEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !entries[0].Okay || entries[0].Email != "ann@example.com" {
		t.Errorf("first entry = %+v, want the accepted verification", entries[0])
	}
	if entries[1].Okay || entries[1].Reason == "" {
		t.Errorf("second entry = %+v, want the rejected one with a reason", entries[1])
	}

	// limit keeps only the newest
	resp2, err := http.Get(srv.URL + AuditRecentRoute + "?limit=1")
	if err != nil {
		t.Fatalf("audit request: %v", err)
	}
	defer resp2.Body.Close()
	entries = nil
	if err := json.NewDecoder(resp2.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Okay {
		t.Errorf("limit=1 entries = %+v, want only the newest (rejected) one", entries)
	}
}

func TestHandleAuditRecentUnreadable(t *testing.T) {
	hostPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	// newTestServer wires the noop auditor, which keeps nothing
	srv := newTestServer(t, hostPub, "")

	resp, err := http.Get(srv.URL + AuditRecentRoute)
	if err != nil {
		t.Fatalf("audit request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + AuditRecentRoute + "?limit=zero")
	if err != nil {
		t.Fatalf("audit request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a bad limit", resp.StatusCode)
	}
}

func TestHealthAndAbout(t *testing.T) {
	hostPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	srv := newTestServer(t, hostPub, "")

	resp, err := http.Get(srv.URL + HealthCheckRoute)
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + AboutRoute)
	if err != nil {
		t.Fatalf("about request: %v", err)
	}
	defer resp.Body.Close()
	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decoding about response: %v", err)
	}
	if info["service"] == "" {
		t.Error("about response missing service name")
	}
}
