package systems

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/nix"
)

// Resolver определяет набор платформ прогона.
type Resolver struct {
	cmd    *nix.Cmd
	logger *slog.Logger
}

// NewResolver создаёт Resolver.
func NewResolver(cmd *nix.Cmd, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cmd: cmd, logger: logger}
}

// Resolve возвращает платформы прогона.
//
// requested == nil — единственная платформа local. Иначе flake по ссылке
// requested должен при импорте вернуть список строк; порядок сохраняется.
func (r *Resolver) Resolve(ctx context.Context, requested *domain.FlakeURL, local domain.System) ([]domain.System, error) {
	if requested == nil {
		return []domain.System{local}, nil
	}

	ref := *requested
	if systems, ok := lookupKnown(ref); ok {
		r.logger.Debug("systems resolved without evaluation", "ref", ref.String(), "systems", systems)
		return systems, nil
	}

	var raw []string
	expr := fmt.Sprintf("import (builtins.getFlake %q).outPath", ref.String())
	if err := nix.EvalExprJSON(ctx, r.cmd, expr, &raw); err != nil {
		return nil, &ResolutionError{Ref: ref.String(), Message: "evaluate", Err: err}
	}

	systems := make([]domain.System, 0, len(raw))
	for i, s := range raw {
		if s == "" {
			return nil, &ResolutionError{Ref: ref.String(), Message: fmt.Sprintf("element %d is empty", i)}
		}
		systems = append(systems, domain.System(s))
	}

	r.logger.Debug("systems resolved", "ref", ref.String(), "systems", systems)
	return systems, nil
}
