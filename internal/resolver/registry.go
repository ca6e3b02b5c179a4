package resolver

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/rhaphazard/browserid/internal/config"
	"github.com/rhaphazard/browserid/internal/core"
)

// Registry is the process-wide key resolution policy: the allow-primaries
// gate first, then locally configured keys, then the remote primary lookup.
// It classifies its own failures, so the chain walker never needs to
// special-case the local host.
type Registry struct {
	host           string
	local          *StaticResolver
	remote         core.KeyResolver
	allowPrimaries bool
}

func (r *Registry) ResolveKey(ctx context.Context, domain string) (ed25519.PublicKey, error) {
	// the toggle gates every non-local issuer, statically configured peers
	// included; only the verifier's own host is exempt
	if domain != r.host && !r.allowPrimaries {
		return nil, core.Failuref(core.UntrustedIssuerPolicy,
			"issuer %q rejected: assertions are only accepted from %q", domain, r.host)
	}

	if r.local.Knows(domain) {
		return r.local.ResolveKey(ctx, domain)
	}

	if r.remote == nil {
		return nil, core.Failuref(core.KeyResolutionFailure,
			"no remote resolver configured for issuer %q", domain)
	}

	key, err := r.remote.ResolveKey(ctx, domain)
	if err != nil {
		return nil, core.Failure(core.KeyResolutionFailure,
			fmt.Errorf("resolving key for %q: %w", domain, err))
	}
	return key, nil
}

// Build constructs the registry from configuration. The verifier's own host
// key is always registered locally; "static" entries add peer keys and at
// most one "wellknown" entry provides the remote primary lookup.
func Build(cfgs []config.ResolverConfig, host string, hostKey ed25519.PublicKey, allowPrimaries bool) (*Registry, error) {
	local := NewStatic(map[string]ed25519.PublicKey{host: hostKey})

	var remote core.KeyResolver
	for _, cfg := range cfgs {
		switch cfg.Type {
		case "static":
			var opts StaticOptions
			if err := decodeOptions(cfg.Config, &opts); err != nil {
				return nil, fmt.Errorf("static resolver %q: %w", cfg.Name, err)
			}
			for domain, encoded := range opts.Keys {
				if err := local.AddEncoded(domain, encoded); err != nil {
					return nil, fmt.Errorf("static resolver %q: %w", cfg.Name, err)
				}
			}
		case "wellknown":
			if remote != nil {
				return nil, fmt.Errorf("wellknown resolver %q: only one wellknown resolver is supported", cfg.Name)
			}
			var opts WellKnownOptions
			if err := decodeOptions(cfg.Config, &opts); err != nil {
				return nil, fmt.Errorf("wellknown resolver %q: %w", cfg.Name, err)
			}
			remote = NewWellKnown(opts)
		default:
			return nil, fmt.Errorf("unknown resolver type %q for resolver %q", cfg.Type, cfg.Name)
		}
	}

	return &Registry{
		host:           host,
		local:          local,
		remote:         remote,
		allowPrimaries: allowPrimaries,
	}, nil
}

// NewRegistry wires a registry from already-built parts. Used by tests and
// local CLI verification.
func NewRegistry(host string, local *StaticResolver, remote core.KeyResolver, allowPrimaries bool) *Registry {
	if local == nil {
		local = NewStatic(nil)
	}
	return &Registry{
		host:           host,
		local:          local,
		remote:         remote,
		allowPrimaries: allowPrimaries,
	}
}

func decodeOptions(raw map[string]any, dest any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     dest,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("building option decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decoding options: %w", err)
	}
	return nil
}
