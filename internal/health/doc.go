// Package health проверяет окружение перед прогоном.
//
// Сейчас проверяется одно: версия Nix не ниже минимальной
// (om.health.default.nix-version.min-required, по умолчанию 2.16.0).
// Провал проверки прерывает прогон до запуска шагов.
package health
