package audit

import (
	"fmt"

	"github.com/rhaphazard/browserid/internal/config"
	"github.com/rhaphazard/browserid/internal/core"
)

// FromConfig builds the auditor selected by the audit config section.
func FromConfig(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "file":
		auditor, err := NewFileAuditor(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("building file auditor: %w", err)
		}
		return auditor, nil
	case "memory":
		return NewInMemoryAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown auditor type %q", cfg.Type)
	}
}
