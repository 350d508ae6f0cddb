// Package repo хранит историю прогонов в Postgres (флаг --results-db).
//
// Таблица ci_runs создаётся EnsureSchema при первом подключении.
package repo
