package steps

import (
	"context"

	"github.com/shaiso/flakeci/internal/domain"
)

// LockfileKind — проверка актуальности flake.lock.
type LockfileKind struct{}

// Name возвращает "lockfile".
func (LockfileKind) Name() string { return "lockfile" }

// Steps возвращает LockfileStep, если шаг включён.
func (LockfileKind) Steps(sub *domain.Subflake) []Step {
	if !sub.Steps.Lockfile.Enable {
		return nil
	}
	return []Step{LockfileStep{}}
}

// LockfileStep выполняет `nix flake lock --no-update-lock-file`:
// команда падает, если flake.lock нужно обновить.
type LockfileStep struct{}

// Name возвращает имя шага.
func (LockfileStep) Name() string { return "lockfile" }

// Execute проверяет flake.lock.
func (LockfileStep) Execute(ctx context.Context, req *Request) (*Outcome, error) {
	url := req.URL()
	args := []string{"flake", "lock", "--no-update-lock-file", url.String()}
	args = append(args, req.OverrideArgs("")...)

	if _, err := req.Nix.Run(ctx, args...); err != nil {
		return nil, err
	}
	return NewOutcome(&domain.LockfileResult{Flake: url}), nil
}
