package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/metrics"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter подмножество kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

// KafkaForwarder пересылает события изменений в Kafka.
// Очередь ограничена: при переполнении событие отбрасывается
type KafkaForwarder struct {
	writer MessageWriter
	events chan Event
	logger *zap.Logger
}

func NewKafkaForwarder(writer MessageWriter, buffer int, logger *zap.Logger) *KafkaForwarder {
	if buffer <= 0 {
		buffer = 256
	}
	return &KafkaForwarder{
		writer: writer,
		events: make(chan Event, buffer),
		logger: logger,
	}
}

// Enqueue не блокирует вызывающего (обработчик Hub)
func (f *KafkaForwarder) Enqueue(e Event) {
	select {
	case f.events <- e:
	default:
		metrics.IncKafkaError("enqueue")
		f.logger.Warn("Kafka forward queue is full, dropping event", zap.String("table", e.Table))
	}
}

// Run отправляет события, пока не отменён контекст
func (f *KafkaForwarder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-f.events:
			f.send(ctx, e)
		}
	}
}

func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

func (f *KafkaForwarder) send(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		metrics.IncKafkaError("marshal")
		return
	}

	key := e.BookingID
	if key == "" {
		key = e.Table
	}

	if err := f.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		metrics.IncKafkaError("write")
		f.logger.Error("Failed to forward change event", zap.String("table", e.Table), zap.Error(err))
		return
	}
	metrics.IncKafkaSent()
}
