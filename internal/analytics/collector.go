package analytics

import (
	"context"
	"log/slog"

	"github.com/docwell/docsearch/pkg/kafka"
	"github.com/docwell/docsearch/pkg/logger"
)

// Collector forwards analytics events to Kafka through a bounded buffer.
// Track never blocks the search path: when the buffer is full the event is
// dropped with a warning.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan any
	logger   *slog.Logger
	done     chan struct{}
}

// NewCollector creates a Collector with the given buffer capacity.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		logger:   logger.WithComponent("analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop. It returns immediately; the loop runs
// until ctx is cancelled or Close is called.
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

// Track enqueues an event without blocking.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the publish loop to finish.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event any) {
	if err := c.producer.Publish(ctx, kafka.Event{Key: "analytics", Value: event}); err != nil {
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
