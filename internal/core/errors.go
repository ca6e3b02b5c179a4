package core

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a verification was rejected. Every rejection a
// relying party can observe carries exactly one of these kinds.
type FailureKind string

const (
	// MalformedAssertion: the bundle could not be unpacked.
	MalformedAssertion FailureKind = "malformed assertion"

	// UntrustedIssuerPolicy: a non-local issuer was encountered while
	// primary support is disabled.
	UntrustedIssuerPolicy FailureKind = "untrusted issuer"

	// KeyResolutionFailure: the issuer's public key could not be looked up.
	KeyResolutionFailure FailureKind = "key resolution failed"

	// ChainVerificationFailure: an expired certificate or a bad signature
	// anywhere in the chain.
	ChainVerificationFailure FailureKind = "certificate chain verification failed"

	// AudienceMismatch: the assertion was created for a different audience,
	// or the supplied audience string is malformed.
	AudienceMismatch FailureKind = "audience mismatch"

	// DelegationViolation: the ultimate issuer is neither the verifier's
	// host nor the domain of the principal's email address.
	DelegationViolation FailureKind = "issuer not authorized for principal"

	// TokenSignatureFailure: the assertion's own signature does not verify
	// against the chain's final key.
	TokenSignatureFailure FailureKind = "assertion signature verification failed"

	// PolicyRejection: the verification succeeded but the configured
	// acceptance policy refused the result.
	PolicyRejection FailureKind = "rejected by acceptance policy"
)

// VerificationError is a classified verification failure. It wraps the
// underlying cause so callers can use errors.Is/As while the relying party
// only ever sees the kind plus a human-readable reason.
type VerificationError struct {
	Kind FailureKind
	Err  error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Failure wraps err into a VerificationError of the given kind.
func Failure(kind FailureKind, err error) *VerificationError {
	return &VerificationError{Kind: kind, Err: err}
}

// Failuref is Failure with fmt.Errorf semantics for the cause.
func Failuref(kind FailureKind, format string, args ...any) *VerificationError {
	return &VerificationError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the failure kind carried by err, or "" if err is not a
// classified verification failure.
func KindOf(err error) FailureKind {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return ""
}
