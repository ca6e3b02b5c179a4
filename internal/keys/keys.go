package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
)

// Algorithm is the only signature algorithm certificates, assertions and
// support documents may use.
const Algorithm = "ED25519"

const (
	privateKeyPEMType = "PRIVATE KEY"
	publicKeyPEMType  = "PUBLIC KEY"
)

// Generate creates a new Ed25519 keypair for the verifier host.
func Generate() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generating keypair: %w", err)
	}
	return pub, priv, nil
}

// WritePrivateKeyPEM stores a private key as PKCS#8 PEM, readable only by
// the owner.
func WritePrivateKeyPEM(path string, priv ed25519.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("marshaling private key: %w", err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: privateKeyPEMType, Bytes: der})
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	return nil
}

// WritePublicKeyPEM stores a public key as PKIX PEM.
func WritePublicKeyPEM(path string, pub ed25519.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return fmt.Errorf("marshaling public key: %w", err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: der})
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	return nil
}

// LoadPrivateKeyPEM reads an Ed25519 private key from a PKCS#8 PEM file.
func LoadPrivateKeyPEM(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != privateKeyPEMType {
		return nil, fmt.Errorf("file %q contains no %s block", path, privateKeyPEMType)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("file %q does not contain an Ed25519 key", path)
	}
	return priv, nil
}

// LoadPublicKeyPEM reads an Ed25519 public key from a PKIX PEM file.
func LoadPublicKeyPEM(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicKeyPEMType {
		return nil, fmt.Errorf("file %q contains no %s block", path, publicKeyPEMType)
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("file %q does not contain an Ed25519 key", path)
	}
	return pub, nil
}

// PublicKeyDocument is the serialized form of a public key, used both in the
// "public-key" claim of certificates and in well-known support documents.
type PublicKeyDocument struct {
	Algorithm string `json:"algorithm"`
	Key       string `json:"key"`
}

// EncodePublicKey renders a public key as a claim document.
func EncodePublicKey(pub ed25519.PublicKey) PublicKeyDocument {
	return PublicKeyDocument{
		Algorithm: Algorithm,
		Key:       base64.RawURLEncoding.EncodeToString(pub),
	}
}

// DecodePublicKey parses a claim document back into a public key.
func DecodePublicKey(doc PublicKeyDocument) (ed25519.PublicKey, error) {
	if doc.Algorithm != Algorithm {
		return nil, fmt.Errorf("unsupported key algorithm %q", doc.Algorithm)
	}
	raw, err := base64.RawURLEncoding.DecodeString(doc.Key)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key has %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}
