package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestProducerPublishesPayload(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sync := mocks.NewSyncProducer(t, cfg)
	sync.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"id":"evt-1"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	p := NewProducerWith(sync)
	defer func() {
		if err := p.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	err := p.Publish(context.Background(), "reservation.events.v1", "res-1", []byte(`{"id":"evt-1"}`), map[string]string{
		"content-type": "application/cloudevents+json",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestProducerReturnsSendError(t *testing.T) {
	sync := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	sync.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := NewProducerWith(sync)
	defer p.Close()

	err := p.Publish(context.Background(), "reservation.events.v1", "res-1", []byte(`{}`), nil)
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("Publish = %v, want ErrOutOfBrokers", err)
	}
}

func TestProducerHonoursCancelledContext(t *testing.T) {
	p := NewProducerWith(mocks.NewSyncProducer(t, mocks.NewTestConfig()))
	defer p.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, "t", "k", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Publish = %v, want context.Canceled", err)
	}
}

func TestRecordHeadersAreSorted(t *testing.T) {
	hs := recordHeaders(map[string]string{"b": "2", "a": "1"})
	if len(hs) != 2 || string(hs[0].Key) != "a" || string(hs[1].Value) != "2" {
		t.Fatalf("headers = %+v", hs)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(nil, "hotelbook", nil); !errors.Is(err, ErrNoBrokers) {
		t.Fatalf("NewProducer = %v", err)
	}
}
