package systems

import "errors"

// ErrSystemResolution — список платформ не удалось получить.
var ErrSystemResolution = errors.New("system resolution failed")

// ResolutionError — ошибка вычисления списка платформ.
type ResolutionError struct {
	Ref     string // flake, из которого читался список
	Message string // описание
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ResolutionError) Error() string {
	msg := "resolve systems from " + e.Ref + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap возвращает ErrSystemResolution и базовую ошибку.
func (e *ResolutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSystemResolution}
	}
	return []error{ErrSystemResolution, e.Err}
}
