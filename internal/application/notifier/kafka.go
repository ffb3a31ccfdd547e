package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
)

// Producer is the subset of *kgo.Client the notifier uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Kafka writes each notification as a JSON record keyed by application id,
// so all messages about one application land on the same partition.
type Kafka struct {
	producer Producer
	topic    string
}

func NewKafka(producer Producer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (n *Kafka) Notify(ctx context.Context, applicationID id.ApplicationID, name, message string) error {
	payload, err := json.Marshal(models.Notification{
		ApplicationID: applicationID,
		Name:          name,
		Message:       message,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(applicationID.String()),
		Value: payload,
	}
	if err := n.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka produce: %w", err)
	}
	return nil
}
