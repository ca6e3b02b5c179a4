// Package chain walks an ordered certificate chain, step by step, from a
// resolved root of trust down to the key that signed the assertion.
package chain

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rhaphazard/browserid/internal/core"
)

// TrustState accumulates trust during a walk. It lives for exactly one walk
// and is never shared between verification calls.
type TrustState struct {
	// CurrentKey is the key the next certificate's signature must verify
	// against. Nil until the first issuer has been resolved.
	CurrentKey ed25519.PublicKey

	// UltimateIssuer is the domain of the last issuer processed: the entity
	// directly vouching for the principal.
	UltimateIssuer string
}

// Result is the outcome of a successful walk.
type Result struct {
	// PublicKey is the last certificate's subject key. The assertion must
	// be signed with it.
	PublicKey ed25519.PublicKey

	// Principal is the identity certified by the last certificate.
	Principal core.Principal

	// UltimateIssuer is the domain ultimately vouching for the principal.
	UltimateIssuer string
}

// Walk verifies an ordered certificate chain. The first certificate is
// checked against its issuer's resolved key; every later certificate is
// checked against the subject key of the one before it. Each step requires a
// signature that verifies and an expiry after now. Any failure aborts the
// whole walk; there is no partial success.
//
// The walk is strictly sequential: step n's trusted key only exists once
// step n-1 has succeeded.
func Walk(ctx context.Context, certificates []core.Certificate, now time.Time, resolver core.KeyResolver) (*Result, error) {
	if len(certificates) == 0 {
		return nil, core.Failuref(core.ChainVerificationFailure, "empty certificate chain")
	}

	var state TrustState
	for i, cert := range certificates {
		if state.CurrentKey == nil {
			key, err := resolver.ResolveKey(ctx, cert.Issuer)
			if err != nil {
				if core.KindOf(err) == "" {
					err = core.Failure(core.KeyResolutionFailure, err)
				}
				return nil, err
			}
			state.CurrentKey = key
		}

		if err := verifySegment(cert.Raw, state.CurrentKey, now); err != nil {
			return nil, core.Failure(core.ChainVerificationFailure,
				fmt.Errorf("certificate %d (issuer %q): %w", i, cert.Issuer, err))
		}

		state.CurrentKey = cert.PublicKey
		state.UltimateIssuer = cert.Issuer
	}

	last := certificates[len(certificates)-1]
	return &Result{
		PublicKey:      state.CurrentKey,
		Principal:      last.Principal,
		UltimateIssuer: state.UltimateIssuer,
	}, nil
}

// VerifySegment checks one compact JWT segment against a trusted key at the
// given instant. The signature must be EdDSA and the expiry is mandatory.
// It is shared by the chain walk and the final assertion signature check.
func VerifySegment(raw string, key ed25519.PublicKey, now time.Time) error {
	return verifySegment(raw, key, now)
}

func verifySegment(raw string, key ed25519.PublicKey, now time.Time) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.Parse(raw, func(*jwt.Token) (any, error) {
		return key, nil
	})
	return err
}
