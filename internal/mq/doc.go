// Package mq публикует события прогона в RabbitMQ (флаг --events-url).
//
// Структура:
//   - connection.go — AMQP соединение, канал с publisher confirms
//   - topology.go   — обменник flakeci.events (topic)
//   - publisher.go  — конверт Event и публикация
//   - events.go     — RunEvents: события прогона и subflakes
//
// Типы сообщений (они же routing keys):
//   - run.started, run.finished
//   - subflake.skipped, subflake.started, subflake.finished
package mq
