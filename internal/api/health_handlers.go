package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/domain"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"database": s.checkDatabase(ctx),
		"search":   s.checkSearch(),
	}

	overall := "healthy"
	for _, c := range components {
		switch {
		case c.Status == "unhealthy":
			overall = "unhealthy"
		case c.Status == "degraded" && overall == "healthy":
			overall = "degraded"
		}
	}

	return &HealthOutput{Body: HealthResponse{Status: overall, Components: components}}, nil
}

// checkDatabase reads the genre names, which always include the sentinel.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.services.Categories == nil {
		return ComponentHealth{Status: "degraded", Message: "database not configured"}
	}

	start := time.Now()
	names, err := s.services.Categories.Names(ctx, domain.KindGenre)
	latency := time.Since(start)
	if err != nil {
		return ComponentHealth{Status: "unhealthy", Latency: latency.String(), Message: "database read failed"}
	}
	if len(names) == 0 {
		return ComponentHealth{Status: "degraded", Latency: latency.String(), Message: "sentinel records missing"}
	}
	return ComponentHealth{Status: "healthy", Latency: latency.String()}
}

func (s *Server) checkSearch() ComponentHealth {
	if s.services.Search == nil || !s.services.Search.Enabled() {
		return ComponentHealth{Status: "degraded", Message: "search disabled"}
	}
	return ComponentHealth{Status: "healthy"}
}
