package orchestrator

import "errors"

// ErrSubflakeFailed — pipeline subflake завершился с ошибкой.
var ErrSubflakeFailed = errors.New("subflake failed")

// SubflakeError — ошибка выполнения subflake. Прогон прерван на нём.
type SubflakeError struct {
	Name string // имя subflake
	Err  error  // ошибка pipeline (обычно *steps.StepError)
}

// Error реализует интерфейс error.
func (e *SubflakeError) Error() string {
	return "subflake " + e.Name + ": " + e.Err.Error()
}

// Unwrap возвращает ErrSubflakeFailed и ошибку pipeline.
func (e *SubflakeError) Unwrap() []error {
	return []error{ErrSubflakeFailed, e.Err}
}
