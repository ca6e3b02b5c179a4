package core

import "time"

// AuditEntry records the outcome of a single verification call.
type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "assertion.verify")
	Action string `json:"action"`

	// Audience is the audience string the relying party supplied.
	Audience string `json:"audience,omitempty"`

	// Email is the verified principal, if the chain walk got that far.
	Email string `json:"email,omitempty"`

	// Issuer is the ultimate issuer domain, if known.
	Issuer string `json:"issuer,omitempty"`

	// Okay indicates whether the assertion was accepted.
	Okay bool `json:"okay"`

	// Reason holds the failure reason for rejected assertions.
	Reason string `json:"reason,omitempty"`
}
