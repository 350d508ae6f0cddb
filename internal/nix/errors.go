package nix

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки слоя nix.
var (
	// ErrCommandFailed — процесс завершился с ненулевым кодом.
	ErrCommandFailed = errors.New("command failed")

	// ErrMissingAttribute — flake не содержит запрошенный атрибут.
	ErrMissingAttribute = errors.New("flake attribute missing")

	// ErrUnexpectedOutput — вывод команды не удалось разобрать.
	ErrUnexpectedOutput = errors.New("unexpected command output")
)

// CommandError — ошибка выполнения внешней команды с контекстом.
type CommandError struct {
	Name     string   // имя программы
	Args     []string // аргументы
	ExitCode int      // код возврата (-1, если процесс не запустился)
	Stderr   string   // хвост stderr
	Err      error    // базовая ошибка
}

// Error реализует интерфейс error.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: exit code %d", e.Name, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap возвращает базовую ошибку.
func (e *CommandError) Unwrap() error {
	return e.Err
}
