package config

import "errors"

// Ошибки конфигурации.
var (
	// ErrConfig — план CI не удалось извлечь из конфигурации.
	ErrConfig = errors.New("config error")

	// ErrMissingConfigAttribute — в секции нет конфигурации с запрошенным именем.
	ErrMissingConfigAttribute = errors.New("missing config attribute")
)

// Error — ошибка загрузки или проекции конфигурации.
type Error struct {
	Flake   string // flake, из которого загружалась конфигурация
	Key     string // секция (ci, health) или "" для загрузки
	Message string // описание
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	msg := "config"
	if e.Key != "" {
		msg += " " + e.Key
	}
	msg += " of " + e.Flake + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap возвращает базовую ошибку.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}
	return []error{ErrConfig, e.Err}
}
