package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrClosed — соединение уже закрыто.
	ErrClosed = errors.New("events connection closed")

	// ErrNacked — брокер не подтвердил сообщение.
	ErrNacked = errors.New("event not acknowledged by broker")
)

// Connection — AMQP соединение на время одного прогона.
//
// Канал работает в режиме publisher confirms: ci завершается сразу после
// прогона, и Send возвращается только после подтверждения брокера.
// Переподключения нет.
type Connection struct {
	logger *slog.Logger

	mu      sync.Mutex // публикация и ожидание подтверждения идут парой
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// NewConnection подключается к брокеру и открывает канал с подтверждениями.
func NewConnection(url string, logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.Default()
	}

	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(Source)

	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat:  10 * time.Second,
		Locale:     "en_US",
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	logger.Debug("connected to events broker")
	return &Connection{logger: logger, conn: conn, channel: ch}, nil
}

// Close закрывает канал и соединение. Повторный вызов ничего не делает.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return errors.Join(c.channel.Close(), c.conn.Close())
}

// declare выполняет fn на канале соединения (объявление топологии).
func (c *Connection) declare(fn func(ch *amqp.Channel) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	return fn(c.channel)
}

// Send реализует Sender: публикует msg и ждёт подтверждения.
func (c *Connection) Send(ctx context.Context, exchange Exchange, key RoutingKey, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	confirm, err := c.channel.PublishWithDeferredConfirmWithContext(ctx, string(exchange), string(key), false, false, msg)
	if err != nil {
		return err
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait for confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNacked, key)
	}
	return nil
}
