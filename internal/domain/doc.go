// Package domain содержит модель данных CI-прогона.
//
// Включает:
//   - system.go   — System, FlakeURL, StoreURI
//   - subflake.go — Subflake, SubflakesConfig, StepsConfig
//   - run.go      — RunSpec, StepsArgs, транспорт LocalRun/RemoteRun
//   - result.go   — RunResult, StepsResult и результаты отдельных шагов
//
// Пакет не выполняет I/O: только типы, нормализация и сериализация.
package domain
