package outbox

import (
	"context"
	"log/slog"

	appoutbox "hotelbook/internal/app/outbox"
)

// Relay publishes records synchronously. It backs the in-memory outbox,
// which has no worker of its own.
type Relay struct {
	Producer    Producer
	TopicPrefix string
	Source      string
}

func (r Relay) Publish(ctx context.Context, rec appoutbox.EventRecord) error {
	if r.Producer == nil {
		return ErrWorkerNotConfigured
	}
	payload, headers, err := Envelope(rec, r.Source)
	if err != nil {
		return err
	}
	return r.Producer.Publish(ctx, TopicFor(r.TopicPrefix, rec.Name), rec.Aggregate, payload, headers)
}

// LogProducer writes events to the log instead of a broker. It stands in
// when no Kafka brokers are configured.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte, _ map[string]string) error {
	if p.Logger != nil {
		p.Logger.InfoContext(ctx, "event published", "topic", topic, "key", key, "size", len(payload))
	}
	return nil
}

var _ appoutbox.Publisher = Relay{}
