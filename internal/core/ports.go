package core

import (
	"context"
	"crypto/ed25519"
)

// KeyResolver provides the current public key for an issuer domain.
// Implementations: static (config-backed, including the verifier's own host)
// and well-known (HTTPS support document lookup for primary domains).
type KeyResolver interface {
	// ResolveKey returns the public key for the given domain.
	ResolveKey(ctx context.Context, domain string) (ed25519.PublicKey, error)
}

// Auditor records verification decisions.
// Implementations: File Auditor, In-Memory Auditor, Noop Auditor.
type Auditor interface {
	// Log writes an audit entry.
	Log(entry AuditEntry) error

	// Close releases any underlying resources.
	Close() error
}
