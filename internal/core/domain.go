package core

import (
	"crypto/ed25519"
	"time"
)

// Principal is the identity claimed by an assertion.
type Principal struct {
	// Email is the principal's email address.
	Email string `json:"email"`
}

// Certificate binds a subject public key to a principal, vouched for by an
// issuer domain. It is decoded from one segment of a bundle; its signature is
// only checked later, during the chain walk, once the issuer's key is known.
type Certificate struct {
	// Issuer is the domain that issued (signed) this certificate.
	Issuer string

	// Expires is the certificate expiry.
	Expires time.Time

	// PublicKey is the subject key the issuer certifies.
	PublicKey ed25519.PublicKey

	// Principal is the identity the certificate vouches for.
	Principal Principal

	// Raw is the compact serialization this certificate was decoded from.
	// The chain walker re-parses it against the trusted issuer key.
	Raw string
}

// Assertion is the token at the end of a bundle: the principal's signed claim
// that the bundle may be used for exactly one audience, until it expires.
type Assertion struct {
	// Audience is the origin the assertion was created for.
	Audience string

	// Expires is the assertion expiry.
	Expires time.Time

	// Raw is the compact serialization of the assertion.
	Raw string
}

// Bundle is an ordered certificate chain plus the assertion it backs.
// Certificates are in issuance order: each one is issued by the entity
// verified in the previous step.
type Bundle struct {
	Certificates []Certificate
	Assertion    Assertion
}

// VerificationResult reports a successful verification.
type VerificationResult struct {
	// Email is the verified principal.
	Email string `json:"email"`

	// Audience is the audience string the relying party supplied.
	Audience string `json:"audience"`

	// Expires is the assertion expiry.
	Expires time.Time `json:"expires"`

	// Issuer is the domain that ultimately vouched for the principal.
	Issuer string `json:"issuer"`
}
