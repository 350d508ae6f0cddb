package nix

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// stderrTailSize — сколько байт stderr сохраняется в CommandError.
const stderrTailSize = 2048

// Runner запускает внешний процесс.
//
// stderr процесса копируется в переданный writer (может быть nil),
// stdout возвращается целиком.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stderr io.Writer) ([]byte, error)
}

// ExecRunner — Runner на основе os/exec.
type ExecRunner struct {
	// Dir — рабочая директория процесса. Пусто — текущая.
	Dir string
}

// Run запускает процесс и ждёт его завершения.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, stderr io.Writer) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout bytes.Buffer
	tail := &tailBuffer{limit: stderrTailSize}
	cmd.Stdout = &stdout
	if stderr != nil {
		cmd.Stderr = io.MultiWriter(stderr, tail)
	} else {
		cmd.Stderr = tail
	}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), &CommandError{
			Name:     name,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(tail.String()),
			Err:      errors.Join(ErrCommandFailed, err),
		}
	}

	return stdout.Bytes(), nil
}

// tailBuffer хранит последние limit байт записанных данных.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
