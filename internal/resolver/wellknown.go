package resolver

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rhaphazard/browserid/internal/keys"
)

const (
	// DefaultWellKnownPath is where a primary domain publishes its support
	// document.
	DefaultWellKnownPath = "/.well-known/browserid"

	defaultFetchTimeout = 5 * time.Second
)

// WellKnownResolver fetches a primary domain's current public key from its
// well-known support document over HTTPS.
type WellKnownResolver struct {
	client *http.Client
	scheme string
	path   string
}

// WellKnownOptions is the inline config of a "wellknown" resolver entry.
type WellKnownOptions struct {
	// Path of the support document. Defaults to DefaultWellKnownPath.
	Path string `mapstructure:"path"`

	// Timeout bounds one document fetch.
	Timeout time.Duration `mapstructure:"timeout"`

	// Insecure switches to plain HTTP. Only for tests.
	Insecure bool `mapstructure:"insecure"`
}

// supportDocument is the published shape of a primary's well-known document.
type supportDocument struct {
	PublicKey keys.PublicKeyDocument `json:"public-key"`
}

func NewWellKnown(opts WellKnownOptions) *WellKnownResolver {
	if opts.Path == "" {
		opts.Path = DefaultWellKnownPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	scheme := "https"
	if opts.Insecure {
		scheme = "http"
	}
	return &WellKnownResolver{
		client: &http.Client{Timeout: opts.Timeout},
		scheme: scheme,
		path:   opts.Path,
	}
}

func (r *WellKnownResolver) ResolveKey(ctx context.Context, domain string) (ed25519.PublicKey, error) {
	url := r.scheme + "://" + domain + r.path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching support document: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("support document request returned status %d", resp.StatusCode)
	}

	var doc supportDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding support document: %w", err)
	}

	key, err := keys.DecodePublicKey(doc.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("support document of %q: %w", domain, err)
	}
	return key, nil
}
