// Package verifier is the verification decision engine. It answers one
// question: does this bundle prove that the named principal authorized use
// of their identity for this exact audience, and is the issuing authority
// entitled to vouch for that principal?
package verifier

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/rhaphazard/browserid/internal/audience"
	"github.com/rhaphazard/browserid/internal/bundle"
	"github.com/rhaphazard/browserid/internal/chain"
	"github.com/rhaphazard/browserid/internal/core"
)

// Verifier verifies backed assertions. It is stateless across calls:
// concurrent Verify calls share only the immutable host name and the
// resolver, so a Verifier is safe for concurrent use.
type Verifier struct {
	host     string
	resolver core.KeyResolver
	now      func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// New creates a Verifier for the given host. The resolver supplies issuer
// public keys, including the verifier's own.
func New(host string, resolver core.KeyResolver, opts ...Option) *Verifier {
	v := &Verifier{
		host:     host,
		resolver: resolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks a wire-format bundle against the audience the relying party
// expects. Each step short-circuits the rest; every rejection is returned as
// a *core.VerificationError carrying one failure kind. On success the result
// reports the principal's email, the caller-supplied audience string, the
// assertion expiry and the ultimate issuer domain.
func (v *Verifier) Verify(ctx context.Context, wire, audienceString string) (*core.VerificationResult, error) {
	logger := log.Ctx(ctx)

	b, err := bundle.Decode(wire)
	if err != nil {
		return nil, core.Failure(core.MalformedAssertion, err)
	}

	now := v.now()
	walked, err := chain.Walk(ctx, b.Certificates, now, v.resolver)
	if err != nil {
		return nil, err
	}

	// the assertion's audience is well-formed (the signing side builds it);
	// the relying party's string may be partial
	if err := audience.Compare(b.Assertion.Audience, audienceString); err != nil {
		logger.Warn().
			Str("want", b.Assertion.Audience).
			Str("got", audienceString).
			Err(err).
			Msg("audience mismatch")
		return nil, core.Failure(core.AudienceMismatch, err)
	}

	if err := CheckAuthority(v.host, walked.UltimateIssuer, walked.Principal.Email); err != nil {
		return nil, err
	}

	if err := chain.VerifySegment(b.Assertion.Raw, walked.PublicKey, now); err != nil {
		// name expiry explicitly, a relying party acting on the reason must
		// not be told the signature was bad
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.Failuref(core.TokenSignatureFailure, "assertion expired: %w", err)
		}
		return nil, core.Failure(core.TokenSignatureFailure, err)
	}

	return &core.VerificationResult{
		Email:    walked.Principal.Email,
		Audience: audienceString,
		Expires:  b.Assertion.Expires,
		Issuer:   walked.UltimateIssuer,
	}, nil
}
