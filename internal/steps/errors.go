package steps

import (
	"errors"

	"github.com/shaiso/flakeci/internal/domain"
)

// Ошибки шагов.
var (
	// ErrStepNotFound — вид шага или шаг не найден.
	ErrStepNotFound = errors.New("step not found")

	// ErrStepExecution — шаг завершился с ошибкой.
	ErrStepExecution = errors.New("step execution failed")

	// ErrInvalidOutput — вывод сборки не удалось разобрать.
	ErrInvalidOutput = errors.New("invalid build output")
)

// StepError — ошибка выполнения шага.
type StepError struct {
	Step   string        // имя шага
	System domain.System // платформа; пусто для шагов, не зависящих от платформы
	Err    error         // базовая ошибка
}

// Error реализует интерфейс error.
func (e *StepError) Error() string {
	msg := "step " + e.Step
	if e.System != "" {
		msg += " (" + e.System.String() + ")"
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap возвращает ErrStepExecution и базовую ошибку.
func (e *StepError) Unwrap() []error {
	return []error{ErrStepExecution, e.Err}
}
