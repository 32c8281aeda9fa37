package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sadhanaapp/sadhana-server/internal/http/response"
)

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse contains health check data.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

// handleHealthCheck reports storage and catalog health. A failed catalog
// load degrades the service; a failed store read marks it unhealthy.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	start := time.Now()
	if err := s.store.Ping(r.Context()); err != nil {
		components["storage"] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
		overall = "unhealthy"
	} else {
		components["storage"] = ComponentHealth{Status: "healthy", Latency: time.Since(start).String()}
	}

	if err := s.catalogService.LoadError(); err != nil {
		components["catalog"] = ComponentHealth{Status: "degraded", Message: err.Error()}
		if overall == "healthy" {
			overall = "degraded"
		}
	} else {
		components["catalog"] = ComponentHealth{Status: "healthy"}
	}

	components["events"] = ComponentHealth{
		Status:  "healthy",
		Message: "clients: " + strconv.Itoa(s.sseManager.ClientCount()),
	}

	status := http.StatusOK
	if overall == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, HealthResponse{Status: overall, Components: components}, s.logger)
}
