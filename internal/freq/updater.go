package freq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/searchfoundry/tokenmatch/pkg/config"
	"github.com/searchfoundry/tokenmatch/pkg/kafka"
	"github.com/searchfoundry/tokenmatch/pkg/logger"
	"github.com/searchfoundry/tokenmatch/pkg/metrics"
)

// TermStatsEvent is one document-frequency update on the term-stats topic.
// The indexing pipeline emits these as segments merge; a zero DocFreq
// retires the term.
type TermStatsEvent struct {
	Term    string `json:"term"`
	DocFreq uint64 `json:"doc_freq"`
}

// Updater applies the term-stats feed to an in-memory store, keeping it
// current with the indexing pipeline. Events are keyed by term, so updates
// for one term arrive in order within a partition.
type Updater struct {
	store    *MemoryStore
	consumer *kafka.Consumer
	m        *metrics.Metrics
	log      *slog.Logger
}

// NewUpdater wires a consumer for the configured term-stats topic.
func NewUpdater(cfg config.KafkaConfig, store *MemoryStore, m *metrics.Metrics) *Updater {
	u := &Updater{
		store: store,
		m:     m,
		log:   logger.WithComponent("freq.updater"),
	}
	u.consumer = kafka.NewConsumer(cfg, cfg.TermStatsTopic, u.handle)
	return u
}

// Run consumes until ctx is cancelled.
func (u *Updater) Run(ctx context.Context) error {
	u.log.Info("term-stats updater starting")
	return u.consumer.Start(ctx)
}

// Close shuts the consumer down.
func (u *Updater) Close() error {
	return u.consumer.Close()
}

func (u *Updater) handle(_ context.Context, key, value []byte) error {
	ev, err := kafka.DecodeJSON[TermStatsEvent](value)
	if err != nil {
		if u.m != nil {
			u.m.TermStatsDecodeErrs.Inc()
		}
		u.log.Warn("dropping undecodable term-stats event",
			"key", string(key),
			"error", err,
		)
		// A poison message must not wedge the partition.
		return nil
	}
	if ev.Term == "" {
		if u.m != nil {
			u.m.TermStatsDecodeErrs.Inc()
		}
		u.log.Warn("dropping term-stats event with empty term", "key", string(key))
		return nil
	}
	u.store.Set(ev.Term, ev.DocFreq)
	if u.m != nil {
		u.m.TermStatsApplied.Inc()
	}
	return nil
}

// Publisher emits term-stats events, keyed by term so that per-term
// ordering survives partitioning.
type Publisher struct {
	producer *kafka.Producer
}

// NewPublisher wires a producer for the configured term-stats topic.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	return &Publisher{producer: kafka.NewProducer(cfg, cfg.TermStatsTopic)}
}

// Publish sends one frequency update.
func (p *Publisher) Publish(ctx context.Context, ev TermStatsEvent) error {
	if ev.Term == "" {
		return fmt.Errorf("term-stats event has empty term")
	}
	return p.producer.Publish(ctx, kafka.Event{Key: ev.Term, Value: ev})
}

// PublishBatch sends a batch of frequency updates.
func (p *Publisher) PublishBatch(ctx context.Context, evs []TermStatsEvent) error {
	events := make([]kafka.Event, 0, len(evs))
	for _, ev := range evs {
		if ev.Term == "" {
			return fmt.Errorf("term-stats event has empty term")
		}
		events = append(events, kafka.Event{Key: ev.Term, Value: ev})
	}
	return p.producer.PublishBatch(ctx, events)
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
