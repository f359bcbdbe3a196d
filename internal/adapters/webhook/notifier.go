package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"zoneGridBot/internal/ports"
)

const (
	defaultQueueSize      = 64
	defaultRequestTimeout = 5 * time.Second
)

// Notifier delivers trade-close events to an HTTP endpoint as JSON. Delivery
// runs on a single background worker behind a bounded queue; when the queue
// is full new events are dropped with a warning so the decision loop is
// never blocked by a slow endpoint.
type Notifier struct {
	url       string
	client    *http.Client
	logger    ports.Logger
	queue     chan ports.ClosedTradePayload
	done      chan struct{}
	closeOnce sync.Once
}

// Config holds configuration for the webhook notifier.
type Config struct {
	URL            string
	QueueSize      int
	RequestTimeout time.Duration
	Logger         ports.Logger
}

// New creates a webhook notifier and starts its delivery worker.
func New(cfg Config) (*Notifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for webhook notifier")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	n := &Notifier{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
		logger: cfg.Logger,
		queue:  make(chan ports.ClosedTradePayload, queueSize),
		done:   make(chan struct{}),
	}
	go n.run()
	return n, nil
}

// NotifyClose enqueues a close event for delivery. Never blocks; events are
// dropped when the queue is full.
func (n *Notifier) NotifyClose(payload ports.ClosedTradePayload) {
	select {
	case n.queue <- payload:
	default:
		n.logger.Warn(context.Background(), "Webhook queue full, dropping close notification", map[string]interface{}{
			"tradeID": payload.TradeID,
		})
	}
}

// Close stops accepting new events, drains the queue and waits for the
// worker to finish.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
		<-n.done
	})
}

func (n *Notifier) run() {
	defer close(n.done)
	for payload := range n.queue {
		n.deliver(payload)
	}
}

func (n *Notifier) deliver(payload ports.ClosedTradePayload) {
	ctx := context.Background()

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error(ctx, err, "Failed to encode close notification", map[string]interface{}{"tradeID": payload.TradeID})
		return
	}

	req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error(ctx, err, "Failed to build webhook request", map[string]interface{}{"tradeID": payload.TradeID})
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// Best-effort delivery: one attempt, no retry queue.
		n.logger.Warn(ctx, "Webhook delivery failed", map[string]interface{}{
			"tradeID": payload.TradeID,
			"error":   err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn(ctx, "Webhook endpoint returned non-2xx status", map[string]interface{}{
			"tradeID": payload.TradeID,
			"status":  resp.StatusCode,
		})
		return
	}
	n.logger.Debug(ctx, "Close notification delivered", map[string]interface{}{"tradeID": payload.TradeID})
}
