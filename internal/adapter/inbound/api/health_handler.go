package api

import (
	"context"
	"net/http"

	"recipefeeder/internal/port/outbound"
)

// DatabaseHealth is the narrow health view the handler needs from the
// database layer.
type DatabaseHealth interface {
	IsHealthy(ctx context.Context) bool
}

// HealthHandler handles GET /health and GET /status.
type HealthHandler struct {
	database DatabaseHealth
	queue    outbound.EmbeddingQueueHealth
	index    outbound.VectorIndex
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(database DatabaseHealth, queue outbound.EmbeddingQueueHealth, index outbound.VectorIndex) *HealthHandler {
	return &HealthHandler{database: database, queue: queue, index: index}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string                    `json:"status"`
	Dependencies map[string]DependencyInfo `json:"dependencies"`
}

// DependencyInfo describes one dependency's health.
type DependencyInfo struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// GetHealth handles GET /health. Returns 503 when any dependency is down.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:       "healthy",
		Dependencies: make(map[string]DependencyInfo),
	}

	if h.database.IsHealthy(r.Context()) {
		response.Dependencies["database"] = DependencyInfo{Status: "healthy"}
	} else {
		response.Status = "unhealthy"
		response.Dependencies["database"] = DependencyInfo{Status: "unhealthy", Details: "ping failed"}
	}

	queueHealth := h.queue.GetConnectionHealth()
	if queueHealth.Connected {
		response.Dependencies["nats"] = DependencyInfo{Status: "healthy"}
	} else {
		response.Status = "unhealthy"
		response.Dependencies["nats"] = DependencyInfo{Status: "unhealthy", Details: queueHealth.LastError}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	_ = WriteJSON(w, statusCode, response)
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	QueueConnection outbound.EmbeddingQueueHealthStatus `json:"queue_connection"`
	QueueMetrics    outbound.EmbeddingQueueMetrics      `json:"queue_metrics"`
	EmbeddingCount  int64                               `json:"embedding_count"`
}

// GetStatus handles GET /status.
func (h *HealthHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		QueueConnection: h.queue.GetConnectionHealth(),
		QueueMetrics:    h.queue.GetMessageMetrics(),
	}

	if count, err := h.index.CountEmbeddings(r.Context()); err == nil {
		response.EmbeddingCount = count
	}

	_ = WriteJSON(w, http.StatusOK, response)
}
