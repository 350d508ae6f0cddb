// Package exitcode сопоставляет ошибки прогона с кодами завершения.
package exitcode

import (
	"errors"
	"os"

	"github.com/shaiso/flakeci/internal/health"
)

// Коды завершения ci.
const (
	// Success — прогон успешен.
	Success = 0

	// GeneralError — ошибка конфигурации, шага, удалённого запуска или записи отчёта.
	GeneralError = 1

	// UsageError — неверные флаги или аргументы.
	UsageError = 2

	// HealthGateFailure — окружение не прошло проверку перед прогоном.
	HealthGateFailure = 3
)

// ErrUsage — ошибка использования командной строки.
var ErrUsage = errors.New("usage error")

// FromError возвращает код завершения для ошибки.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, health.ErrHealthGate):
		return HealthGateFailure
	case errors.Is(err, ErrUsage):
		return UsageError
	default:
		return GeneralError
	}
}

// Exit завершает процесс с кодом для err.
func Exit(err error) {
	os.Exit(FromError(err))
}

// Description возвращает описание кода завершения.
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case HealthGateFailure:
		return "Health check failed"
	default:
		return "Unknown error"
	}
}
