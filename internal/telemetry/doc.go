// Package telemetry обеспечивает наблюдаемость прогона.
//
// Включает:
//   - logging.go — structured logging через slog (в stderr)
//   - metrics.go — Prometheus метрики с выгрузкой в textfile
package telemetry
