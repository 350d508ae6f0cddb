package nix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// defaultExtraArgs включают flakes для установок Nix, где они ещё экспериментальные.
var defaultExtraArgs = []string{"--extra-experimental-features", "nix-command flakes"}

// Cmd запускает nix и сопутствующие программы через Runner.
type Cmd struct {
	// Bin — исполняемый файл nix. По умолчанию "nix".
	Bin string

	// ExtraArgs — флаги, добавляемые к каждому вызову nix.
	ExtraArgs []string

	runner Runner
	stderr io.Writer
	logger *slog.Logger
}

// NewCmd создаёт Cmd. stderr получает прогресс nix (обычно os.Stderr).
func NewCmd(runner Runner, stderr io.Writer, logger *slog.Logger) *Cmd {
	if runner == nil {
		runner = &ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cmd{
		Bin:       "nix",
		ExtraArgs: append([]string(nil), defaultExtraArgs...),
		runner:    runner,
		stderr:    stderr,
		logger:    logger,
	}
}

// Run выполняет `nix <args>` и возвращает stdout.
func (c *Cmd) Run(ctx context.Context, args ...string) ([]byte, error) {
	full := append(append([]string(nil), c.ExtraArgs...), args...)
	return c.Exec(ctx, c.Bin, full...)
}

// RunJSON выполняет `nix <args>` и декодирует stdout как JSON в v.
func (c *Cmd) RunJSON(ctx context.Context, v any, args ...string) error {
	out, err := c.Run(ctx, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("%w: nix %s: %v", ErrUnexpectedOutput, strings.Join(args, " "), err)
	}
	return nil
}

// Exec выполняет произвольную программу (nix-store, ssh) через тот же Runner.
func (c *Cmd) Exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	c.logger.Debug("exec", "cmd", name, "args", strings.Join(args, " "))
	return c.runner.Run(ctx, name, args, c.stderr)
}
