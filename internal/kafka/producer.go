package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/kalpovskii/todo/internal/app/models"
	"github.com/segmentio/kafka-go"
)

// Producer publishes todo events. Writes are asynchronous; delivery errors
// are logged and never reach the request that caused the event.
type Producer struct {
	writer *kafka.Writer
	logger *log.Logger
}

func NewProducer(broker, topic string, logger *log.Logger) *Producer {
	p := &Producer{logger: logger}
	p.writer = &kafka.Writer{
		Addr:     kafka.TCP(broker),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.logger.Error("failed to write kafka messages", "count", len(messages), "err", err)
			}
		},
	}
	return p
}

func (p *Producer) SendEvent(event models.TodoEvent) {
	msg, err := NewMessage(event)
	if err != nil {
		p.logger.Error("failed to encode todo event", "action", event.Action, "err", err)
		return
	}

	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		p.logger.Error("failed to write kafka message", "action", event.Action, "id", event.Todo.ID, "err", err)
	}
}

// Close flushes pending messages.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// NewMessage keys the message by todo id so that events for one todo land on
// the same partition.
func NewMessage(event models.TodoEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Todo.ID),
		Value: value,
		Time:  event.Time,
	}, nil
}

func DecodeEvent(msg kafka.Message) (models.TodoEvent, error) {
	var event models.TodoEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return models.TodoEvent{}, fmt.Errorf("decode event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
