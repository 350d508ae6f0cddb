package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — topic-обменник событий прогонов.
// Потребители сами объявляют очереди и привязывают их, например по "subflake.*".
const ExchangeEvents Exchange = "flakeci.events"

// Routing keys.
const (
	RoutingKeyRunStarted       RoutingKey = "run.started"
	RoutingKeyRunFinished      RoutingKey = "run.finished"
	RoutingKeySubflakeSkipped  RoutingKey = "subflake.skipped"
	RoutingKeySubflakeStarted  RoutingKey = "subflake.started"
	RoutingKeySubflakeFinished RoutingKey = "subflake.finished"
)

// SetupTopology объявляет обменник событий.
func SetupTopology(conn *Connection) error {
	return conn.declare(func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			"topic",                // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}
		return nil
	})
}
