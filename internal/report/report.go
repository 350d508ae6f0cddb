package report

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/shaiso/flakeci/internal/domain"
)

// Stdout — назначение, означающее стандартный вывод.
const Stdout = "-"

// ErrIO — отчёт не удалось записать или прочитать.
var ErrIO = errors.New("report I/O error")

// IOError — ошибка записи или чтения отчёта.
type IOError struct {
	Path string
	Op   string // "write" или "read"
	Err  error
}

// Error реализует интерфейс error.
func (e *IOError) Error() string {
	return e.Op + " report " + e.Path + ": " + e.Err.Error()
}

// Unwrap возвращает ErrIO и базовую ошибку.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// Sink пишет отчёт в файл или в stdout.
type Sink struct {
	stdout io.Writer
}

// NewSink создаёт Sink. stdout == nil — os.Stdout.
func NewSink(stdout io.Writer) *Sink {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Sink{stdout: stdout}
}

// Write сохраняет отчёт по адресу dest.
//
// Пустой dest — ничего не делать, "-" — stdout, иначе файл
// создаётся или перезаписывается.
func (s *Sink) Write(result *domain.RunResult, dest string) error {
	switch dest {
	case "":
		return nil
	case Stdout:
		if err := Encode(s.stdout, result); err != nil {
			return &IOError{Path: dest, Op: "write", Err: err}
		}
		return nil
	}

	f, err := os.Create(dest)
	if err != nil {
		return &IOError{Path: dest, Op: "write", Err: err}
	}
	if err := Encode(f, result); err != nil {
		f.Close()
		return &IOError{Path: dest, Op: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: dest, Op: "write", Err: err}
	}
	return nil
}

// Encode пишет отчёт в w.
func Encode(w io.Writer, result *domain.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Decode читает отчёт из r.
func Decode(r io.Reader) (*domain.RunResult, error) {
	var result domain.RunResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, err
	}
	if result.Result == nil {
		result.Result = make(map[string]*domain.StepsResult)
	}
	return &result, nil
}

// Read читает отчёт из файла.
func Read(path string) (*domain.RunResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Op: "read", Err: err}
	}
	defer f.Close()

	result, err := Decode(f)
	if err != nil {
		return nil, &IOError{Path: path, Op: "read", Err: err}
	}
	return result, nil
}
