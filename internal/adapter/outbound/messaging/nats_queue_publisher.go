// Package messaging provides the NATS JetStream adapter for the embedding
// work queue port.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"recipefeeder/internal/config"
	"recipefeeder/internal/port/outbound"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	natsConnectionTimeoutSeconds = 5

	streamName    = "EMBEDDING"
	streamSubject = "embedding.job"

	// Jobs expire after 1 day; the downstream worker is expected to drain
	// the queue well before then.
	streamMaxAgeHours = 24

	// How long to wait for outstanding async publish acks per batch.
	publishAckTimeout = 10 * time.Second
)

// EmbeddingJobMessage is the envelope placed on the embedding work queue.
// The downstream consumer upserts embeddings idempotently, so redundant
// messages for the same recipe are harmless.
type EmbeddingJobMessage struct {
	RecipeID  string    `json:"recipe_id"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSQueuePublisher provides the NATS JetStream implementation of the
// EmbeddingQueue port.
type NATSQueuePublisher struct {
	config      config.NATSConfig
	conn        *nats.Conn
	js          nats.JetStreamContext
	isConnected bool

	mutex          sync.RWMutex
	connectedAt    time.Time
	reconnectCount int
	lastError      error

	publishedCount int64
	failedCount    int64
	averageLatency time.Duration

	circuitBreakerOpen bool
	lastFailureTime    time.Time
	failureCount       int
}

// NewNATSQueuePublisher creates a new NATS queue publisher.
func NewNATSQueuePublisher(cfg config.NATSConfig) (*NATSQueuePublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL cannot be empty")
	}
	if !strings.HasPrefix(cfg.URL, "nats://") {
		return nil, errors.New("invalid NATS URL scheme")
	}
	if cfg.MaxReconnects < 0 {
		return nil, errors.New("max reconnects cannot be negative")
	}
	if cfg.ReconnectWait < 0 {
		return nil, errors.New("reconnect wait cannot be negative")
	}

	return &NATSQueuePublisher{config: cfg}, nil
}

// Connect establishes the connection to the NATS server and creates the
// JetStream context.
func (n *NATSQueuePublisher) Connect() error {
	opts := []nats.Option{
		nats.MaxReconnects(n.config.MaxReconnects),
		nats.ReconnectWait(n.config.ReconnectWait),
		nats.Timeout(natsConnectionTimeoutSeconds * time.Second),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			n.mutex.Lock()
			n.reconnectCount++
			n.mutex.Unlock()
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			n.mutex.Lock()
			n.isConnected = false
			if err != nil {
				n.lastError = err
			}
			n.mutex.Unlock()
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.mutex.Lock()
		n.lastError = err
		n.mutex.Unlock()
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	n.mutex.Lock()
	n.conn = conn
	n.js = js
	n.isConnected = true
	n.connectedAt = time.Now()
	n.mutex.Unlock()
	return nil
}

// Disconnect closes the NATS connection.
func (n *NATSQueuePublisher) Disconnect() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.js = nil
	}
	n.isConnected = false
	return nil
}

// EnsureStream creates the embedding work-queue stream if it doesn't exist.
func (n *NATSQueuePublisher) EnsureStream() error {
	if n.js == nil {
		return errors.New("not connected to NATS server")
	}

	streamConfig := &nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"embedding.>"},
		Storage:   nats.FileStorage,
		Retention: nats.WorkQueuePolicy,
		MaxAge:    streamMaxAgeHours * time.Hour,
		Replicas:  1,
	}

	if _, err := n.js.AddStream(streamConfig); err != nil {
		if _, infoErr := n.js.StreamInfo(streamName); infoErr == nil {
			// Stream exists, this is fine.
			return nil
		}
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// PublishEmbeddingJobs publishes one chunk of recipe ids as a batch of
// async publishes, then waits for all acks. A failed ack fails the whole
// chunk; the producer layer decides what to do with the chunk's ids.
func (n *NATSQueuePublisher) PublishEmbeddingJobs(ctx context.Context, recipeIDs []string) error {
	start := time.Now()

	select {
	case <-ctx.Done():
		n.recordPublish(false, time.Since(start))
		return ctx.Err()
	default:
	}

	if len(recipeIDs) == 0 {
		return nil
	}

	if n.isCircuitBreakerOpen() {
		n.recordPublish(false, time.Since(start))
		return errors.New("circuit breaker open: too many recent failures")
	}

	n.mutex.RLock()
	js := n.js
	n.mutex.RUnlock()
	if js == nil {
		n.recordPublish(false, time.Since(start))
		return errors.New("not connected to NATS")
	}

	futures := make([]nats.PubAckFuture, 0, len(recipeIDs))
	for _, recipeID := range recipeIDs {
		data, err := json.Marshal(EmbeddingJobMessage{
			RecipeID:  recipeID,
			MessageID: uuid.New().String(),
			Timestamp: time.Now(),
		})
		if err != nil {
			n.recordPublish(false, time.Since(start))
			return fmt.Errorf("failed to marshal message for %q: %w", recipeID, err)
		}

		future, err := js.PublishAsync(streamSubject, data)
		if err != nil {
			n.recordPublish(false, time.Since(start))
			return fmt.Errorf("failed to publish message for %q: %w", recipeID, err)
		}
		futures = append(futures, future)
	}

	select {
	case <-js.PublishAsyncComplete():
	case <-time.After(publishAckTimeout):
		n.recordPublish(false, time.Since(start))
		return errors.New("timed out waiting for publish acks")
	case <-ctx.Done():
		n.recordPublish(false, time.Since(start))
		return ctx.Err()
	}

	if ackErr := firstAckError(futures); ackErr != nil {
		n.recordPublish(false, time.Since(start))
		return fmt.Errorf("publish not acknowledged: %w", ackErr)
	}

	n.recordPublish(true, time.Since(start))
	return nil
}

// firstAckError waits on each future until it resolves and returns the
// first ack error, or nil when every publish was acknowledged. The wait is
// blocking on purpose: an ack error can land on the future marginally
// after PublishAsyncComplete fires, and a non-blocking poll would miss it.
func firstAckError(futures []nats.PubAckFuture) error {
	for _, future := range futures {
		select {
		case <-future.Ok():
		case ackErr := <-future.Err():
			return ackErr
		}
	}
	return nil
}

// GetConnectionHealth returns the current connection health status.
func (n *NATSQueuePublisher) GetConnectionHealth() outbound.EmbeddingQueueHealthStatus {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	status := outbound.EmbeddingQueueHealthStatus{
		Connected:        n.isConnected,
		JetStreamEnabled: n.js != nil,
		Reconnects:       n.reconnectCount,
		Uptime:           "0s",
	}
	if n.isConnected {
		status.Uptime = time.Since(n.connectedAt).String()
	}
	if n.lastError != nil {
		status.LastError = n.lastError.Error()
	}
	if n.circuitBreakerOpen {
		status.CircuitBreaker = "open"
	} else {
		status.CircuitBreaker = "closed"
	}
	return status
}

// GetMessageMetrics returns current message publishing metrics.
func (n *NATSQueuePublisher) GetMessageMetrics() outbound.EmbeddingQueueMetrics {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	return outbound.EmbeddingQueueMetrics{
		PublishedCount: n.publishedCount,
		FailedCount:    n.failedCount,
		AverageLatency: n.averageLatency.String(),
	}
}

func (n *NATSQueuePublisher) recordPublish(success bool, latency time.Duration) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if success {
		n.publishedCount++
		if n.averageLatency == 0 {
			n.averageLatency = latency
		} else {
			// EMA with alpha = 0.1
			n.averageLatency = time.Duration(
				0.9*float64(n.averageLatency) + 0.1*float64(latency),
			)
		}
		n.failureCount = 0
		n.circuitBreakerOpen = false
		return
	}

	n.failedCount++
	n.failureCount++
	n.lastFailureTime = time.Now()

	const maxFailures = 3
	if n.failureCount >= maxFailures {
		n.circuitBreakerOpen = true
	}
}

func (n *NATSQueuePublisher) isCircuitBreakerOpen() bool {
	const circuitOpenDuration = 30 * time.Second

	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.circuitBreakerOpen && time.Since(n.lastFailureTime) > circuitOpenDuration {
		n.circuitBreakerOpen = false
		n.failureCount = 0
	}
	return n.circuitBreakerOpen
}
