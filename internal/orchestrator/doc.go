// Package orchestrator выполняет план CI на локальном Nix store.
//
// Orchestrator отвечает за:
//   - Обход subflakes в лексикографическом порядке имён
//   - Пропуск subflakes, не выбранных селектором или несовместимых с платформами
//   - Запуск pipeline шагов для каждого оставшегося subflake
//   - Прерывание прогона на первой ошибке (fail-fast)
//
// Выполнение строго последовательное: вывод прогресса идёт в том же
// порядке, что и сборка.
package orchestrator
