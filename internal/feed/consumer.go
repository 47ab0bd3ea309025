// Package feed is the ingestion demo: a Kafka consumer that reads
// normalized crime records off a topic and upserts them into a crime
// store. This is conventional surrounding plumbing — the "ingestion of
// police feeds... normalized into the crime store" kept deliberately
// outside the core. No C1-C8 logic depends on this package.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/prompt-general/saferoute/pkg/models"
)

// ErrConsumerClosed is returned by Run after Close has been called.
var ErrConsumerClosed = errors.New("feed: consumer closed")

// Sink is the write-side capability a consumer upserts records into.
// crimestore.CrimeStore is read-only by design (§4.3); Sink is this
// package's own small capability so the core's query contract stays
// untouched by ingestion concerns.
type Sink interface {
	Ingest(c models.CrimePoint)
}

// wireRecord is the normalized crime record as it appears on the wire:
// already deduplicated and severity-assigned upstream of this consumer.
type wireRecord struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Severity   int       `json:"severity"`
	CrimeType  string    `json:"crime_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Consumer reads wireRecord-shaped JSON messages off a Kafka topic and
// upserts them into Sink.
type Consumer struct {
	reader *kafka.Reader
	sink   Sink
	closed bool
}

// Config configures the consumer's Kafka connection.
type Config struct {
	BootstrapServers []string
	Topic            string
	GroupID          string
}

// NewConsumer builds a consumer bound to cfg's topic and sink.
func NewConsumer(cfg Config, sink Sink) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.BootstrapServers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
	return &Consumer{reader: reader, sink: sink}
}

// Run reads messages until ctx is canceled or Close is called,
// upserting each normalized record into the sink. Malformed messages
// are logged and skipped rather than aborting the whole stream.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if c.closed {
			return ErrConsumerClosed
		}

		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var rec wireRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			log.Printf("feed: skipping malformed record: %v", err)
			continue
		}

		c.sink.Ingest(toCrimePoint(rec))
	}
}

// Close releases the underlying Kafka reader.
func (c *Consumer) Close() error {
	c.closed = true
	return c.reader.Close()
}

func toCrimePoint(rec wireRecord) models.CrimePoint {
	return models.CrimePoint{
		Coordinate: models.Coordinate{Lat: rec.Lat, Lng: rec.Lng},
		Severity:   rec.Severity,
		CrimeType:  rec.CrimeType,
		OccurredAt: rec.OccurredAt,
		AgeHours:   time.Since(rec.OccurredAt).Hours(),
	}
}
