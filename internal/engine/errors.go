package engine

import "errors"

// Ошибки валидации плана.
var (
	// ErrEmptySubflakeName — subflake без имени.
	ErrEmptySubflakeName = errors.New("subflake has empty name")

	// ErrInvalidSubflakeName — имя subflake содержит недопустимые символы.
	ErrInvalidSubflakeName = errors.New("invalid subflake name")

	// ErrInvalidDir — директория subflake выходит за пределы flake.
	ErrInvalidDir = errors.New("invalid subflake dir")

	// ErrUnknownStepType — неизвестный тип пользовательского шага.
	ErrUnknownStepType = errors.New("unknown step type")

	// ErrEmptyCommand — devshell-шаг без команды.
	ErrEmptyCommand = errors.New("devshell step has no command")

	// ErrDuplicateStepName — пользовательский шаг совпадает по имени со встроенным.
	ErrDuplicateStepName = errors.New("duplicate step name")
)

// Ошибки селектора.
var (
	// ErrInvalidSelector — селектор длиннее "<subflake>.<step>".
	ErrInvalidSelector = errors.New("invalid selector")

	// ErrUnknownStep — селектор называет шаг, которого нет в subflake.
	ErrUnknownStep = errors.New("selector names unknown step")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Subflake string // subflake, где произошла ошибка
	Field    string // поле, вызвавшее ошибку
	Message  string // описание ошибки
	Err      error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Subflake != "" {
		return "subflake " + e.Subflake + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(subflake, field, message string, err error) *ValidationError {
	return &ValidationError{
		Subflake: subflake,
		Field:    field,
		Message:  message,
		Err:      err,
	}
}
