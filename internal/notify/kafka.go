package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes booking events to the notifications topic. The
// downstream notification service owns templating and delivery.
type KafkaNotifier struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaNotifier{
		writer: writer,
		topic:  topic,
	}
}

func (n *KafkaNotifier) Publish(ctx context.Context, event BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	// Key by session so events for one session stay ordered per partition.
	message := kafka.Message{
		Topic: n.topic,
		Key:   []byte(event.SessionID),
		Value: data,
		Time:  time.Now(),
	}

	if err := n.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

var _ Notifier = (*KafkaNotifier)(nil)
