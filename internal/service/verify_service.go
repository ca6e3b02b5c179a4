package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rhaphazard/browserid/internal/audit"
	"github.com/rhaphazard/browserid/internal/core"
	"github.com/rhaphazard/browserid/internal/policy"
	"github.com/rhaphazard/browserid/internal/verifier"
)

// VerifyService drives a full verification: decision engine, acceptance
// policy, decision log.
type VerifyService struct {
	verifier *verifier.Verifier
	policy   *policy.Policy
	auditor  core.Auditor
}

func NewVerifyService(v *verifier.Verifier, p *policy.Policy, auditor core.Auditor) *VerifyService {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	return &VerifyService{
		verifier: v,
		policy:   p,
		auditor:  auditor,
	}
}

func (s *VerifyService) Verify(ctx context.Context, req VerifyRequest) (*core.VerificationResult, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	entry := core.AuditEntry{
		ID:       reqID,
		Time:     time.Now(),
		Action:   "assertion.verify",
		Audience: req.Audience,
	}
	defer func() {
		if err := s.auditor.Log(entry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for verification")
		}
	}()

	result, err := s.verifier.Verify(ctx, req.Assertion, req.Audience)
	if err != nil {
		entry.Reason = err.Error()
		if core.KindOf(err) == "" {
			// not a classified rejection: this is our fault, not the caller's
			return nil, httpError(http.StatusInternalServerError, err)
		}
		return nil, err
	}
	entry.Email = result.Email
	entry.Issuer = result.Issuer

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("email", result.Email).Str("issuer", result.Issuer)
	})

	ok, err := s.policy.Accept(result)
	if err != nil {
		entry.Reason = err.Error()
		return nil, httpError(http.StatusInternalServerError, err)
	}
	if !ok {
		entry.Reason = string(core.PolicyRejection)
		return nil, core.Failuref(core.PolicyRejection,
			"principal %q is not accepted by this verifier", result.Email)
	}

	entry.Okay = true
	logger.Info().Msg("assertion verified")
	return result, nil
}

// AuditReader is implemented by auditors that can serve their entries back,
// like the in-memory auditor.
type AuditReader interface {
	GetRecent(limit int) ([]core.AuditEntry, error)
}

// RecentDecisions returns up to limit of the newest audit entries. The
// second return value reports whether the configured auditor keeps entries
// readable at all.
func (s *VerifyService) RecentDecisions(limit int) ([]core.AuditEntry, bool, error) {
	reader, ok := s.auditor.(AuditReader)
	if !ok {
		return nil, false, nil
	}
	entries, err := reader.GetRecent(limit)
	return entries, true, err
}

// Reason renders a verification failure for the relying party: the failure
// kind plus the underlying cause, never a bare internal error.
func Reason(err error) string {
	if kind := core.KindOf(err); kind != "" {
		return err.Error()
	}
	return fmt.Sprintf("internal verifier error: %s", err)
}
