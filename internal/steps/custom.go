package steps

import (
	"context"
	"fmt"
	"sort"

	"github.com/shaiso/flakeci/internal/domain"
)

// CustomKind — пользовательские шаги из steps.custom.
type CustomKind struct{}

// Name возвращает "custom".
func (CustomKind) Name() string { return "custom" }

// Steps возвращает шаги по имени в лексикографическом порядке.
func (CustomKind) Steps(sub *domain.Subflake) []Step {
	names := make([]string, 0, len(sub.Steps.Custom))
	for name := range sub.Steps.Custom {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Step, 0, len(names))
	for _, name := range names {
		out = append(out, &CustomStep{name: name, cfg: sub.Steps.Custom[name]})
	}
	return out
}

// CustomStep запускает flake app (`nix run`) или команду в devShell (`nix develop -c`).
type CustomStep struct {
	name string
	cfg  domain.CustomStepConfig
}

// NewCustomStep создаёт пользовательский шаг.
func NewCustomStep(name string, cfg domain.CustomStepConfig) *CustomStep {
	return &CustomStep{name: name, cfg: cfg}
}

// Name возвращает имя шага.
func (s *CustomStep) Name() string { return s.name }

// Execute запускает шаг. Если Systems шага не пересекается с платформами прогона,
// шаг пропускается.
func (s *CustomStep) Execute(ctx context.Context, req *Request) (*Outcome, error) {
	if !s.cfg.CanRunOn(req.Systems) {
		return Skipped(), nil
	}

	var (
		target domain.FlakeURL
		args   []string
	)
	switch s.cfg.Type {
	case domain.CustomStepApp:
		target = req.URL().WithAttr(s.cfg.TargetName())
		args = append([]string{"run", target.String()}, req.OverrideArgs("")...)
		if len(s.cfg.Args) > 0 {
			args = append(args, "--")
			args = append(args, s.cfg.Args...)
		}
	case domain.CustomStepDevShell:
		target = req.URL().WithAttr(s.cfg.TargetName())
		args = append([]string{"develop", target.String()}, req.OverrideArgs("")...)
		args = append(args, "-c")
		args = append(args, s.cfg.Command...)
	default:
		return nil, fmt.Errorf("unknown custom step type %q", s.cfg.Type)
	}

	if _, err := req.Nix.Run(ctx, args...); err != nil {
		return nil, err
	}
	return NewOutcome(&domain.CustomResult{Name: s.name, Type: s.cfg.Type, Target: target}), nil
}
