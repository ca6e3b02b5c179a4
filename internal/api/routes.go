package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/v1/about"

	VerifyRoute      = "/v1/verify"
	AuditRecentRoute = "/v1/audit/recent"
)
