package bundle

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rhaphazard/browserid/internal/core"
	"github.com/rhaphazard/browserid/internal/keys"
)

// Wire format: certificate segments and the assertion segment joined by '~',
// certificates first, in issuance order, the assertion last. Every segment
// is a compact EdDSA JWT.
const segmentSeparator = "~"

// CertificateClaims is the claim set of one certificate segment.
type CertificateClaims struct {
	jwt.RegisteredClaims

	// PublicKey is the subject key the issuer certifies.
	PublicKey keys.PublicKeyDocument `json:"public-key"`

	// Principal is the identity the certificate vouches for.
	Principal core.Principal `json:"principal"`
}

// AssertionClaims is the claim set of the assertion segment. Audience and
// expiry are carried by the registered claims.
type AssertionClaims struct {
	jwt.RegisteredClaims
}

// Join packs certificate segments and an assertion segment into the wire
// format. The inverse of Decode.
func Join(certificates []string, assertion string) string {
	return strings.Join(append(append([]string(nil), certificates...), assertion), segmentSeparator)
}

// Decode unpacks a wire-format bundle into its certificate chain and
// assertion without verifying any signature. Claims are extracted so the
// chain walker and the orchestrator can operate on typed data; the raw
// segments are kept for later signature verification.
func Decode(wire string) (*core.Bundle, error) {
	segments := strings.Split(wire, segmentSeparator)
	if len(segments) < 2 {
		return nil, fmt.Errorf("expected at least one certificate and an assertion, got %d segment(s)", len(segments))
	}

	parser := jwt.NewParser()

	bundle := &core.Bundle{
		Certificates: make([]core.Certificate, 0, len(segments)-1),
	}
	for i, segment := range segments[:len(segments)-1] {
		cert, err := decodeCertificate(parser, segment)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i, err)
		}
		bundle.Certificates = append(bundle.Certificates, *cert)
	}

	assertion, err := decodeAssertion(parser, segments[len(segments)-1])
	if err != nil {
		return nil, fmt.Errorf("assertion: %w", err)
	}
	bundle.Assertion = *assertion

	return bundle, nil
}

func decodeCertificate(parser *jwt.Parser, segment string) (*core.Certificate, error) {
	var claims CertificateClaims
	if _, _, err := parser.ParseUnverified(segment, &claims); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if claims.Issuer == "" {
		return nil, fmt.Errorf("missing issuer domain")
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("missing expiry")
	}
	if claims.Principal.Email == "" {
		return nil, fmt.Errorf("missing principal email")
	}
	pub, err := keys.DecodePublicKey(claims.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("subject key: %w", err)
	}
	return &core.Certificate{
		Issuer:    claims.Issuer,
		Expires:   claims.ExpiresAt.Time,
		PublicKey: pub,
		Principal: claims.Principal,
		Raw:       segment,
	}, nil
}

func decodeAssertion(parser *jwt.Parser, segment string) (*core.Assertion, error) {
	var claims AssertionClaims
	if _, _, err := parser.ParseUnverified(segment, &claims); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] == "" {
		return nil, fmt.Errorf("expected exactly one audience, got %d", len(claims.Audience))
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("missing expiry")
	}
	return &core.Assertion{
		Audience: claims.Audience[0],
		Expires:  claims.ExpiresAt.Time,
		Raw:      segment,
	}, nil
}
