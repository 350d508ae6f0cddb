package steps

import (
	"context"

	"github.com/shaiso/flakeci/internal/domain"
)

// FlakeCheckKind — `nix flake check`.
type FlakeCheckKind struct{}

// Name возвращает "flake-check".
func (FlakeCheckKind) Name() string { return "flake-check" }

// Steps возвращает FlakeCheckStep, если шаг включён.
func (FlakeCheckKind) Steps(sub *domain.Subflake) []Step {
	if !sub.Steps.FlakeCheck.Enable {
		return nil
	}
	return []Step{FlakeCheckStep{}}
}

// FlakeCheckStep выполняет `nix flake check` для текущей платформы.
type FlakeCheckStep struct{}

// Name возвращает имя шага.
func (FlakeCheckStep) Name() string { return "flake-check" }

// Execute запускает проверку flake.
func (FlakeCheckStep) Execute(ctx context.Context, req *Request) (*Outcome, error) {
	url := req.URL()
	args := []string{"flake", "check", url.String()}
	args = append(args, req.OverrideArgs("")...)

	if _, err := req.Nix.Run(ctx, args...); err != nil {
		return nil, err
	}
	return NewOutcome(&domain.FlakeCheckResult{Flake: url}), nil
}
