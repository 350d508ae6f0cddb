// Package nixtest содержит поддельный nix.Runner для тестов.
package nixtest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/shaiso/flakeci/internal/nix"
)

// Call — зафиксированный вызов программы.
type Call struct {
	Name string
	Args []string
}

// String возвращает вызов одной строкой: "nix build ...".
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response — ответ на вызов.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type handler struct {
	match string
	fn    func(Call) Response
}

// Runner — nix.Runner, отвечающий заранее заданными ответами.
//
// Ответ выбирается по первой зарегистрированной подстроке,
// входящей в строку вызова. Вызов без совпадений завершается успешно с пустым выводом.
type Runner struct {
	mu       sync.Mutex
	calls    []Call
	handlers []handler
}

// NewRunner создаёт пустой Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// On регистрирует статический ответ для вызовов, содержащих match.
func (r *Runner) On(match string, resp Response) *Runner {
	return r.OnFunc(match, func(Call) Response { return resp })
}

// OnFunc регистрирует вычисляемый ответ для вызовов, содержащих match.
func (r *Runner) OnFunc(match string, fn func(Call) Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, handler{match: match, fn: fn})
	return r
}

// Run реализует nix.Runner.
func (r *Runner) Run(_ context.Context, name string, args []string, stderr io.Writer) ([]byte, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	var fn func(Call) Response
	line := call.String()
	for _, h := range r.handlers {
		if strings.Contains(line, h.match) {
			fn = h.fn
			break
		}
	}
	r.mu.Unlock()

	if fn == nil {
		return nil, nil
	}

	resp := fn(call)
	if stderr != nil && resp.Stderr != "" {
		io.WriteString(stderr, resp.Stderr)
	}
	if resp.ExitCode != 0 {
		return []byte(resp.Stdout), &nix.CommandError{
			Name:     name,
			Args:     args,
			ExitCode: resp.ExitCode,
			Stderr:   resp.Stderr,
			Err:      nix.ErrCommandFailed,
		}
	}
	return []byte(resp.Stdout), nil
}

// Calls возвращает все зафиксированные вызовы.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsMatching возвращает вызовы, содержащие подстроку.
func (r *Runner) CallsMatching(match string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if strings.Contains(c.String(), match) {
			out = append(out, c)
		}
	}
	return out
}

// NewCmd создаёт nix.Cmd поверх Runner без вывода в терминал.
func NewCmd(r *Runner) *nix.Cmd {
	return nix.NewCmd(r, io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
