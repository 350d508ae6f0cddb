package remote

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/nix"
	"github.com/shaiso/flakeci/internal/report"
)

// Dispatcher выполняет RemoteRun.
type Dispatcher struct {
	cmd      *nix.Cmd
	selfPath func() (string, error)
	logger   *slog.Logger
}

// NewDispatcher создаёт Dispatcher.
func NewDispatcher(cmd *nix.Cmd, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{cmd: cmd, selfPath: SelfStorePath, logger: logger}
}

// Dispatch выполняет прогон на run.Host и возвращает его отчёт.
//
// Flake в отчёте заменяется на исходную ссылку, так что результат
// совпадает с результатом локального прогона.
func (d *Dispatcher) Dispatch(ctx context.Context, run domain.RemoteRun) (*domain.RunResult, error) {
	host := run.Host.String()
	fail := func(stage string, err error) error {
		return &DispatchError{Host: host, Stage: stage, Err: err}
	}

	meta, err := nix.GetFlakeMetadata(ctx, d.cmd, run.Spec.FlakeRef)
	if err != nil {
		return nil, fail("metadata", err)
	}

	self, err := d.selfPath()
	if err != nil {
		return nil, fail("self", err)
	}

	d.logger.Info("📦 copying to remote store", "host", host, "flake", meta.Path, "self", self)
	if err := nix.Copy(ctx, d.cmd, run.Host, meta.Path, self); err != nil {
		return nil, fail("copy", err)
	}

	args := RemoteArgs(run.Spec, meta.Path)
	d.logger.Info("🌍 running on remote store", "host", host, "args", strings.Join(args, " "))

	remoteCmd := ShellJoin(append([]string{self + "/bin/ci"}, args...))
	out, err := d.cmd.Exec(ctx, "ssh", run.Host.SSHTarget(), remoteCmd)
	if err != nil {
		return nil, fail("run", err)
	}

	res, err := report.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fail("decode", err)
	}
	res.Flake = run.Spec.FlakeRef.WithoutAttr()
	return res, nil
}

// RemoteArgs возвращает аргументы `ci run` для удалённой стороны.
//
// Ссылка на flake заменяется на его store path с сохранением атрибутного
// пути, отчёт направляется в stdout. --on в аргументы не попадает.
func RemoteArgs(spec domain.RunSpec, flakePath string) []string {
	spec.On = nil
	_, attrs := spec.FlakeRef.Split()
	spec.FlakeRef = domain.FlakeURL(flakePath)
	if len(attrs) > 0 {
		spec.FlakeRef = domain.FlakeURL(flakePath + "#" + strings.Join(attrs, "."))
	}

	args := []string{"run", "--results", report.Stdout}
	return append(args, spec.ToCLIArgs()...)
}

// ShellJoin собирает команду для удалённого shell, экранируя аргументы.
func ShellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:=@+,#%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
