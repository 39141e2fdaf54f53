package analytics

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Hydrohaven/cs121-A3/pkg/kafka"
	"github.com/Hydrohaven/cs121-A3/pkg/resilience"
)

// Collector buffers analytics events and drains them to Kafka in the
// background. Track never blocks the request path; when the buffer is full
// events are dropped. Publishing runs behind a circuit breaker so a broker
// outage does not burn a goroutine retrying every event.
type Collector struct {
	producer *kafka.Producer
	breaker  *resilience.CircuitBreaker
	eventCh  chan interface{}
	logger   *slog.Logger
	done     chan struct{}
}

func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		breaker:  resilience.NewCircuitBreaker("analytics-publish", resilience.CircuitBreakerConfig{}),
		eventCh:  make(chan interface{}, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the drain loop. Call Close to stop it and flush.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event. Drops it when the buffer is full.
func (c *Collector) Track(event interface{}) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event interface{}) {
	err := c.breaker.Execute(func() error {
		return c.producer.Publish(ctx, kafka.Event{Key: "analytics", Value: event})
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Debug("analytics event dropped (circuit open)")
			return
		}
		c.logger.Error("failed to publish analytics event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
