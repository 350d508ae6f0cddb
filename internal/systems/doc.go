// Package systems определяет набор платформ для прогона.
//
// Без --systems это текущая платформа из конфигурации Nix.
// С --systems — список, который возвращает указанный flake
// (см. https://github.com/nix-systems).
package systems
