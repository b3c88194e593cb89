package outbound

import "context"

// EmbeddingQueue defines the outbound port for publishing recipe ids to the
// embedding work queue. One call publishes one chunk as a batch operation;
// chunking is the producer's responsibility.
type EmbeddingQueue interface {
	PublishEmbeddingJobs(ctx context.Context, recipeIDs []string) error
}

// EmbeddingQueueHealth defines health monitoring capabilities for the queue
// publisher, surfaced by the HTTP shell's health and status endpoints.
type EmbeddingQueueHealth interface {
	GetConnectionHealth() EmbeddingQueueHealthStatus
	GetMessageMetrics() EmbeddingQueueMetrics
}

// EmbeddingQueueHealthStatus represents the health of the queue connection.
type EmbeddingQueueHealthStatus struct {
	Connected        bool   `json:"connected"`
	LastError        string `json:"last_error,omitempty"`
	Uptime           string `json:"uptime"`
	Reconnects       int    `json:"reconnects"`
	JetStreamEnabled bool   `json:"jetstream_enabled"`
	CircuitBreaker   string `json:"circuit_breaker"`
}

// EmbeddingQueueMetrics represents message publishing metrics.
type EmbeddingQueueMetrics struct {
	PublishedCount int64  `json:"published_count"`
	FailedCount    int64  `json:"failed_count"`
	AverageLatency string `json:"average_latency"`
}
