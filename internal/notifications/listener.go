// Package notifications listens to the network service's notification bus
// and feeds relevant router changes into the relay queue.
package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"rug/internal/metrics"
	"rug/internal/relay"
	"rug/pkg/logging"
	rugstrings "rug/pkg/strings"
)

const subsystem = "NotificationListener"

// Config describes the Kafka topic carrying neutron notifications.
type Config struct {
	Brokers []string
	Topic   string
	Group   string

	// ClientID defaults to "rug-<uuid>".
	ClientID string
}

// fetchClient is the part of *kgo.Client the listener drives.
type fetchClient interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	Close()
}

// Listener consumes the notification topic as part of a consumer group.
type Listener struct {
	client fetchClient
	topic  string
}

// NewListener creates a Kafka client for cfg. Offsets are committed only
// after the corresponding notifications are queued.
func NewListener(cfg Config) (*Listener, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("notifications: no kafka brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("notifications: no topic configured")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "rug-" + uuid.NewString()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Listener{client: client, topic: cfg.Topic}, nil
}

// Run polls the topic until ctx is cancelled or the queue is closed.
func (l *Listener) Run(ctx context.Context, queue *relay.Queue) error {
	logging.Info(subsystem, "Listening for notifications on topic %s", l.topic)

	for {
		fetches := l.client.PollFetches(ctx)
		if ctx.Err() != nil || fetches.IsClientClosed() {
			return nil
		}

		// A failed partition does not hold back records other partitions
		// returned in the same fetch.
		var queued []*kgo.Record
		var sendErr error
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			if p.Err != nil {
				logging.Warn(subsystem, "Fetch error on %s/%d: %v", p.Topic, p.Partition, p.Err)
				return
			}
			for _, record := range p.Records {
				if sendErr != nil {
					return
				}
				if sendErr = handleRecord(ctx, queue, record.Value); sendErr == nil {
					queued = append(queued, record)
				}
			}
		})

		if len(queued) > 0 {
			if err := l.client.CommitRecords(ctx, queued...); err != nil && ctx.Err() == nil {
				logging.Warn(subsystem, "Failed to commit offsets: %v", err)
			}
		}

		if sendErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			return sendErr
		}
	}
}

// Close leaves the consumer group and releases the client.
func (l *Listener) Close() {
	l.client.Close()
}

// handleRecord decodes one record and queues it. Undecodable records are
// logged and dropped; only a queue failure is returned.
func handleRecord(ctx context.Context, queue *relay.Queue, value []byte) error {
	n, ok, err := Decode(value)
	if err != nil {
		metrics.ListenerDecodeErrors.Inc()
		logging.Warn(subsystem, "Dropping notification %q: %v", rugstrings.Truncate(string(value), rugstrings.PreviewLen), err)
		return nil
	}
	if !ok {
		return nil
	}

	logging.Debug(subsystem, "Queueing %s", n.Event)
	if err := queue.Send(ctx, n); err != nil {
		return fmt.Errorf("failed to queue notification: %w", err)
	}
	return nil
}
