// Package cli реализует команды ci.
//
// # Обзор
//
// CLI разбирает аргументы, собирает domain.RunSpec и передаёт его Service.
// Service выбирает транспорт (локально или через --on) и подключает
// необязательные приёмники: метрики, события RabbitMQ, историю в Postgres.
//
// # Ключевые компоненты
//
// ## Service
//
// Локальный прогон:
//  1. Сбор сведений о Nix (версия, конфигурация)
//  2. Загрузка конфигурации om и проверка окружения (health gate)
//  3. Определение платформ и построение плана
//  4. Orchestrator по плану
//  5. Отчёт, история, метрики
//
// Удалённый прогон передаётся remote.Dispatcher; отчёт пишется локально.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Сводка прогона выводится в stderr: stdout может быть занят отчётом (--results -).
//
// ## Commands
//
//   - run: прогон CI
//   - history: list, show
//
// Команды создаются фабричными функциями (NewRunCmd, NewHistoryCmd),
// принимающими замыкания для ленивого создания Service и Output
// после парсинга PersistentFlags.
package cli
