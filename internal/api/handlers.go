package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/rhaphazard/browserid/internal/api/presenter"
	"github.com/rhaphazard/browserid/internal/buildinfo"
	"github.com/rhaphazard/browserid/internal/core"
	"github.com/rhaphazard/browserid/internal/service"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

type VerifyPayload struct {
	// Assertion is the opaque wire-format bundle presented by the user.
	Assertion string `json:"assertion"`

	// Audience is the relying party's own origin.
	Audience string `json:"audience"`
}

// VerifyResponse mirrors the protocol's classic response shape: status is
// "okay" or "failure"; a failure carries only a reason.
type VerifyResponse struct {
	Status   string `json:"status"`
	Email    string `json:"email,omitempty"`
	Audience string `json:"audience,omitempty"`
	Expires  int64  `json:"expires,omitempty"` // unix milliseconds
	Issuer   string `json:"issuer,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

const (
	StatusOkay    = "okay"
	StatusFailure = "failure"
)

func DecodePayload(r *http.Request, dest any, allowEmpty bool) error {
	switch r.Header.Get("Content-Type") {
	case "application/json", "":
		// strict encoding for JSON
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dest); err != nil {
			if !errors.Is(err, io.EOF) || !allowEmpty {
				return err
			}
		}
		// ensure there's no extra data
		if dec.More() {
			return errors.New("extra data in request body")
		}
		return nil
	default:
		return errors.New("unsupported content type")
	}
}

// handleAuditRecent returns the newest verification decisions. Only auditors
// that keep entries readable (the in-memory one) can serve this; with any
// other auditor the route answers 404.
func (s *Server) handleAuditRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			presenter.Error(w, r, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, readable, err := s.verifyService.RecentDecisions(limit)
	if !readable {
		presenter.Error(w, r, "the configured auditor does not keep decisions readable", http.StatusNotFound)
		return
	}
	if err != nil {
		presenter.Err(w, r, err, "reading decision log")
		return
	}
	presenter.JSON(w, r, entries, http.StatusOK)
}

// handleVerify processes verification requests. A rejected assertion is not
// an HTTP error: the request was answered, the answer is "failure".
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload VerifyPayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode verify request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Assertion == "" || payload.Audience == "" {
		presenter.Error(w, r, "assertion and audience are required", http.StatusBadRequest)
		return
	}

	result, err := s.verifyService.Verify(ctx, service.VerifyRequest{
		Assertion: payload.Assertion,
		Audience:  payload.Audience,
	})
	if err != nil {
		if core.KindOf(err) == "" {
			// internal fault, not a verification verdict
			presenter.Err(w, r, err, "verification unavailable")
			return
		}
		presenter.JSON(w, r, VerifyResponse{
			Status: StatusFailure,
			Reason: service.Reason(err),
		}, http.StatusOK)
		return
	}

	presenter.JSON(w, r, VerifyResponse{
		Status:   StatusOkay,
		Email:    result.Email,
		Audience: result.Audience,
		Expires:  result.Expires.UnixMilli(),
		Issuer:   result.Issuer,
	}, http.StatusOK)
}
