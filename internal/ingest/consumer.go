package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/docwell/docsearch/internal/document"
	"github.com/docwell/docsearch/internal/engine"
	"github.com/docwell/docsearch/pkg/kafka"
	"github.com/docwell/docsearch/pkg/logger"
)

// DocumentEvent is the Kafka message payload carrying one document for
// indexing.
type DocumentEvent struct {
	Document   document.SearchDocument `json:"document"`
	ReceivedAt time.Time               `json:"received_at"`
}

// Consumer drains the document-ingest topic into the search engine. Each
// message carries one document; messages are indexed individually so a bad
// document never stalls the topic.
type Consumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewConsumer wraps a Kafka consumer for the ingest pipeline.
func NewConsumer(kafkaConsumer *kafka.Consumer) *Consumer {
	return &Consumer{
		consumer: kafkaConsumer,
		logger:   logger.WithComponent("ingest-consumer"),
	}
}

// Start begins consuming. It blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("ingest consumer starting")
	return c.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that validates and indexes
// each incoming document. Invalid payloads are logged and skipped rather
// than retried; they would fail identically forever.
func HandleMessage(eng *engine.Engine) kafka.MessageHandler {
	log := logger.WithComponent("ingest-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[DocumentEvent](value)
		if err != nil {
			log.Error("failed to decode document event", "error", err, "key", string(key))
			return nil
		}
		if err := ValidateDocument(&event.Document); err != nil {
			log.Error("rejecting invalid document", "doc_id", event.Document.ID, "error", err)
			return nil
		}
		eng.IndexDocuments([]document.SearchDocument{event.Document})
		log.Info("document indexed from topic", "doc_id", event.Document.ID)
		return nil
	}
}
