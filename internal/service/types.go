package service

// VerifyRequest is one relying party's question: does this bundle prove the
// principal authorized use of their identity for this audience?
type VerifyRequest struct {
	// Assertion is the opaque wire-format bundle.
	Assertion string

	// Audience is the relying party's own origin, possibly partial.
	Audience string
}
