package verifier

import (
	"strings"

	"github.com/rhaphazard/browserid/internal/core"
)

// CheckAuthority enforces the delegation rule: an issuer may vouch for a
// principal only if it is the verifier's own host, or the domain of the
// principal's email address. This is the single rule preventing one domain
// from impersonating another domain's users.
//
// Delegation is deliberately non-transitive; there is no delegation graph.
func CheckAuthority(host, ultimateIssuer, email string) error {
	if ultimateIssuer == host {
		return nil
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return core.Failuref(core.DelegationViolation, "principal %q has no email domain", email)
	}
	emailDomain := email[at+1:]

	if ultimateIssuer == emailDomain {
		return nil
	}
	return core.Failuref(core.DelegationViolation,
		"issuer %q may not vouch for addresses of %q", ultimateIssuer, emailDomain)
}
