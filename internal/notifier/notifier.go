package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventBookAvailable = "BOOK_AVAILABLE"

// Event is the wire shape published to the notifications topic. The delivery
// channel (email, in-app) is entirely downstream of the broker.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	BookTitle string    `json:"bookTitle"`
	CreatedAt time.Time `json:"createdAt"`
}

type Notifier struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func New(producer sarama.SyncProducer, topic string, log *zap.Logger) *Notifier {
	return &Notifier{
		producer: producer,
		topic:    topic,
		log:      log.Named("notifier"),
	}
}

// BookAvailable tells the user their reservation went READY and the pickup
// window is ticking.
func (n *Notifier) BookAvailable(_ context.Context, userID, bookTitle string) error {
	data, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		Type:      eventBookAvailable,
		UserID:    userID,
		BookTitle: bookTitle,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: n.topic, Value: sarama.StringEncoder(data)}
	if _, _, err = n.producer.SendMessage(msg); err != nil {
		return err
	}
	n.log.Debug("book available event published", zap.String("user_id", userID))
	return nil
}

// Noop drops events; used in tests and kafka-less deployments.
type Noop struct{}

func (Noop) BookAvailable(context.Context, string, string) error { return nil }
