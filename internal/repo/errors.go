package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки истории прогонов.
var (
	// ErrNotFound — прогон не найден.
	ErrNotFound = errors.New("run not found")

	// ErrDuplicateRun — прогон с таким ID уже сохранён.
	ErrDuplicateRun = errors.New("run already recorded")

	// ErrCorruptRecord — сохранённый отчёт не удалось декодировать.
	ErrCorruptRecord = errors.New("corrupt run record")
)

// isUniqueViolation проверяет код 23505 (unique_violation).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
