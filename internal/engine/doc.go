// Package engine превращает проекцию конфигурации в проверенный план прогона.
//
// Включает:
//   - plan.go     — Plan и его построение из config.Projection
//   - selector.go — разбор селектора ".#<config>.<subflake>.<step>"
//   - validate.go — валидация subflakes и пользовательских шагов
//
// Порядок выполнения и фильтрация subflakes — в пакете orchestrator.
package engine
