package engine

import (
	"github.com/shaiso/flakeci/internal/config"
	"github.com/shaiso/flakeci/internal/domain"
)

// Plan — проверенный план прогона.
//
// Plan только читается оркестратором и шагами.
type Plan struct {
	// Flake — flake без атрибутного пути.
	Flake domain.FlakeURL

	// Subflakes — subflakes по имени.
	Subflakes domain.SubflakesConfig

	// Selector — выбранный subflake и шаг.
	Selector Selector
}

// NewPlan строит и валидирует Plan из проекции конфигурации.
func NewPlan(proj *config.Projection) (*Plan, error) {
	sel, err := ParseSelector(proj.Selector)
	if err != nil {
		return nil, err
	}

	subflakes := proj.Subflakes
	if subflakes == nil {
		subflakes = domain.SubflakesConfig{}
	}

	plan := &Plan{
		Flake:     proj.Flake,
		Subflakes: subflakes,
		Selector:  sel,
	}
	if err := Validate(plan); err != nil {
		return nil, err
	}
	return plan, nil
}
