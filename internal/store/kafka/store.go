// Package kafka adapts a compacted Kafka topic to the store.Client
// interface. One report is one message keyed by its document ID; a
// tombstone (nil value) removes the document. Subscribing tails the topic
// from the first offset, materializes the full document set, and emits
// complete snapshots ordered by timestamp descending.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/store"
)

// Store implements store.Client on a compacted Kafka topic.
type Store struct {
	brokers []string
	topic   string
	writer  *kafkago.Writer
	logger  *slog.Logger
}

// NewStore creates a Kafka document store for the given topic.
func NewStore(brokers []string, topic string, logger *slog.Logger) *Store {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{}, // keep a key on one partition for compaction
		RequiredAcks: kafkago.RequireAll,
	}
	return &Store{brokers: brokers, topic: topic, writer: w, logger: logger}
}

// Create assigns a document ID, publishes the report, and returns the ID.
func (s *Store) Create(ctx context.Context, report domain.Report) (string, error) {
	report.ID = uuid.NewString()

	value, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("%w: serialize report: %w", store.ErrUnavailable, err)
	}

	msg := kafkago.Message{
		Key:   []byte(report.ID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(report.Category)},
			{Key: "created_at", Value: []byte(time.UnixMilli(report.Timestamp).UTC().Format(time.RFC3339))},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return "", fmt.Errorf("%w: publish report: %w", store.ErrUnavailable, err)
	}

	s.logger.Info("report persisted", "id", report.ID, "category", report.Category)
	return report.ID, nil
}

// Subscribe tails the topic in a background goroutine. While catching up
// on the backlog no snapshots are emitted; one fires when the reader is
// caught up, then one per applied message after that. The synchronizer's
// last-write-wins sequencing absorbs bursts either way.
func (s *Store) Subscribe(ctx context.Context, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) (store.Disposer, error) {
	subCtx, cancel := context.WithCancel(ctx)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     s.brokers,
		Topic:       s.topic,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})

	go s.tail(subCtx, reader, onSnapshot, onError)

	return func() {
		cancel()
		if err := reader.Close(); err != nil {
			s.logger.Warn("kafka reader close failed", "error", err)
		}
	}, nil
}

func (s *Store) tail(ctx context.Context, reader *kafkago.Reader, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) {
	docs := make(map[string]domain.Report)

	// An empty topic still owes the subscriber one snapshot, otherwise a
	// fresh deployment renders nothing until the first report arrives.
	if lag, err := reader.ReadLag(ctx); err == nil && lag == 0 {
		onSnapshot(nil)
	}

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return // disposed
			}
			onError(fmt.Errorf("%w: consume topic: %w", store.ErrUnavailable, err))
			return
		}

		if err := applyMessage(docs, msg.Key, msg.Value); err != nil {
			// One malformed document must not kill the stream for everyone.
			s.logger.Warn("skipping malformed document",
				"error", err, "offset", msg.Offset, "key", string(msg.Key))
			continue
		}

		if reader.Lag() > 0 {
			continue // still draining the backlog
		}

		snapshot := orderedSnapshot(docs)
		s.logger.Debug("kafka snapshot emitted", "reports", len(snapshot))
		onSnapshot(snapshot)
	}
}

// Close releases the producer. Open subscriptions hold their own readers
// and are released by their disposers.
func (s *Store) Close() error {
	return s.writer.Close()
}

// applyMessage folds one topic message into the materialized document set.
// A nil value is a compaction tombstone and removes the document.
func applyMessage(docs map[string]domain.Report, key, value []byte) error {
	id := string(key)
	if id == "" {
		return fmt.Errorf("message without document key")
	}
	if len(value) == 0 {
		delete(docs, id)
		return nil
	}

	var r domain.Report
	if err := json.Unmarshal(value, &r); err != nil {
		return fmt.Errorf("decode document %s: %w", id, err)
	}
	r.ID = id // the key is authoritative
	docs[id] = r
	return nil
}

// orderedSnapshot flattens the document set ordered by timestamp
// descending, ID ascending as a deterministic tiebreak.
func orderedSnapshot(docs map[string]domain.Report) []domain.Report {
	reports := make([]domain.Report, 0, len(docs))
	for _, r := range docs {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].Timestamp != reports[j].Timestamp {
			return reports[i].Timestamp > reports[j].Timestamp
		}
		return reports[i].ID < reports[j].ID
	})
	return reports
}
