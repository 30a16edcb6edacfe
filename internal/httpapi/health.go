package httpapi

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Qdrant    string `json:"qdrant"`
	Timestamp string `json:"timestamp"`
}

// HealthChecker is implemented by storage.QdrantStorage.
type HealthChecker interface {
	Health(ctx context.Context) error
}

const healthTimeout = 3 * time.Second

// NewHealthHandler reports 200 while Qdrant answers its health check and 503 otherwise.
func NewHealthHandler(store HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := HealthResponse{
			Status:    "healthy",
			Qdrant:    "connected",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		status := http.StatusOK

		if store == nil || store.Health(ctx) != nil {
			resp.Status = "unhealthy"
			resp.Qdrant = "disconnected"
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
