package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Source — отправитель событий (Event.Source, AppId и имя соединения).
const Source = "flakeci"

// MessageType — тип события. Совпадает с routing key.
type MessageType string

// Типы событий.
const (
	MessageTypeRunStarted       MessageType = "run.started"
	MessageTypeRunFinished      MessageType = "run.finished"
	MessageTypeSubflakeSkipped  MessageType = "subflake.skipped"
	MessageTypeSubflakeStarted  MessageType = "subflake.started"
	MessageTypeSubflakeFinished MessageType = "subflake.finished"
)

// Sender отправляет AMQP сообщение. Реализуется Connection.
type Sender interface {
	Send(ctx context.Context, exchange Exchange, key RoutingKey, msg amqp.Publishing) error
}

// Event — конверт события в ExchangeEvents.
type Event struct {
	ID      string      `json:"id"`
	Type    MessageType `json:"type"`
	Source  string      `json:"source"`
	Time    time.Time   `json:"time"`
	Payload any         `json:"payload"`
}

// Publisher публикует события прогона.
type Publisher struct {
	sender Sender
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher создаёт Publisher.
func NewPublisher(sender Sender, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{sender: sender, logger: logger, now: time.Now}
}

// Emit публикует событие типа t с payload в ExchangeEvents.
func (p *Publisher) Emit(ctx context.Context, t MessageType, payload any) error {
	ev := Event{
		ID:      uuid.NewString(),
		Type:    t,
		Source:  Source,
		Time:    p.now().UTC(),
		Payload: payload,
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", t, err)
	}

	err = p.sender.Send(ctx, ExchangeEvents, RoutingKey(t), amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.Time,
		Type:         string(t),
		AppId:        Source,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", t, err)
	}

	p.logger.Debug("event published", "type", t, "event_id", ev.ID)
	return nil
}
