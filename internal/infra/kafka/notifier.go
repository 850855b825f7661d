package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/port"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/logger"
)

// MailNotifier implements port.Notifier by publishing outbound mail requests
// to a Kafka topic consumed by the mail delivery service. Send returns as soon
// as the message is queued on the producer; broker failures are reported on
// the producer's error channel.
type MailNotifier struct {
	producer *Producer
	topic    string
	log      *zap.Logger
}

// NewMailNotifier constructs a Kafka-backed mail notifier.
func NewMailNotifier(producer *Producer, topic string, log *zap.Logger) *MailNotifier {
	return &MailNotifier{producer: producer, topic: topic, log: log}
}

type mailMessage struct {
	MessageID string    `json:"message_id"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	QueuedAt  time.Time `json:"queued_at"`
}

// Send queues the message body for delivery to the given address.
func (n *MailNotifier) Send(ctx context.Context, to string, body string) error {
	payload := mailMessage{
		MessageID: uuid.NewString(),
		To:        to,
		Body:      body,
		QueuedAt:  time.Now().UTC(),
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: n.producer.TopicName(n.topic),
		Key:   sarama.StringEncoder(to),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case n.producer.Producer().Input() <- message:
		n.log.Debug("Mail queued",
			zap.String("to", logger.MaskEmail(to)),
			zap.String("message_id", payload.MessageID),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ port.Notifier = (*MailNotifier)(nil)
