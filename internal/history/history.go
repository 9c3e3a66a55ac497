// Package history records successful estimates in the JetStream stream and
// reads them back.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/logger"
	"github.com/mark3labs/estimatr/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// Entry is one recorded estimate.
type Entry struct {
	ID             string           `json:"id"`
	Timestamp      time.Time        `json:"timestamp"`
	Request        estimate.Request `json:"request"`
	FormattedPrice string           `json:"formatted_price"`
	PredictedPrice float64          `json:"predicted_price"`
	Sequence       uint64           `json:"-"`
}

// Store appends entries to the estimates stream.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore sets up the stream and returns a store over it.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	stream, err := nats.SetupStream(ctx, js)
	if err != nil {
		return nil, fmt.Errorf("failed to set up history stream: %w", err)
	}
	return &Store{js: js, stream: stream}, nil
}

// Record appends e, filling in its ID and timestamp when unset, and returns
// the stored entry.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	data, err := sonic.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to marshal entry: %w", err)
	}

	subject := nats.SubjectForCity(e.Request.City)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish estimate to %s: %v", subject, err)
		return Entry{}, fmt.Errorf("failed to record estimate: %w", err)
	}

	e.Sequence = ack.Sequence
	logger.Debug("Recorded estimate %s: seq=%d", e.ID, ack.Sequence)
	return e, nil
}

// ListOptions filters List.
type ListOptions struct {
	City  string // Only entries for this city; empty for all
	Limit int    // Most recent N entries; 0 for all
}

// List returns recorded entries, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	filter := nats.SubjectAll
	if opts.City != "" {
		filter = nats.SubjectForCity(opts.City)
	}

	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject:     filter,
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		AckPolicy:         jetstream.AckNonePolicy,
		InactiveThreshold: time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	var entries []Entry
	const batchSize = 256
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var e Entry
			if err := sonic.Unmarshal(msg.Data(), &e); err != nil {
				meta, _ := msg.Metadata()
				if meta != nil {
					logger.Warn("Skipping malformed history entry (seq=%d): %v", meta.Sequence.Stream, err)
				}
				continue
			}
			if meta, err := msg.Metadata(); err == nil {
				e.Sequence = meta.Sequence.Stream
			}
			entries = append(entries, e)
		}
		if err := msgs.Error(); err != nil {
			logger.Debug("History fetch ended: %v", err)
		}
		if n < batchSize {
			break
		}
	}

	// Newest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}
