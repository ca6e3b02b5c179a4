package api

import (
	"net/http"

	"github.com/rhaphazard/browserid/internal/api/middleware"
	"github.com/rhaphazard/browserid/internal/service"
)

type Server struct {
	verifyService *service.VerifyService
}

func NewServer(verifyService *service.VerifyService) *Server {
	return &Server{
		verifyService: verifyService,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// verification route
	mux.HandleFunc("POST "+VerifyRoute, s.handleVerify)

	// decision log, when the auditor keeps one readable
	mux.HandleFunc("GET "+AuditRecentRoute, s.handleAuditRecent)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(HealthCheckRoute)(
				mux)))
}
