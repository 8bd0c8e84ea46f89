package dispatch

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// LogNotifier stands in for the purchase confirmation, it only records the event
type LogNotifier struct{}

func (LogNotifier) Name() string { return "log" }

func (LogNotifier) Notify(_ context.Context, ev OrderEvent) error {
	zap.L().Info("order purchase confirmation",
		zap.String("namespace", "dispatch"),
		zap.Int64("order_id", ev.OrderID),
		zap.Int64("customer_id", ev.CustomerID),
		zap.Int64("amount", ev.Amount),
		zap.Int("lines", len(ev.Lines)))
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes order-created events keyed by order id
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (k *KafkaNotifier) Name() string { return "kafka" }

func (k *KafkaNotifier) Notify(ctx context.Context, ev OrderEvent) error {
	value, err := jsoniter.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encode order event")
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("order-created-%d", ev.OrderID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Event)},
		},
	})
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
