package config

import "github.com/shaiso/flakeci/internal/domain"

// CIKey — секция конфигурации с планом CI.
const CIKey = "ci"

// Projection — план CI, извлечённый из конфигурации.
type Projection struct {
	// Flake — flake без атрибутного пути.
	Flake domain.FlakeURL

	// Subflakes — subflakes плана.
	Subflakes domain.SubflakesConfig

	// Selector — остаток атрибутного пути (subflake и, далее, шаг).
	Selector []string
}

// ProjectCI извлекает план CI.
//
// Без секции ci используется DefaultSubflakesConfig (один subflake ROOT).
func (c *OmConfig) ProjectCI() (*Projection, error) {
	var subflakes domain.SubflakesConfig
	rest, found, err := c.GetSubConfigUnder(CIKey, &subflakes)
	if err != nil {
		return nil, err
	}
	if !found {
		subflakes = domain.DefaultSubflakesConfig()
	}
	if subflakes == nil {
		subflakes = domain.SubflakesConfig{}
	}

	return &Projection{
		Flake:     c.FlakeURL,
		Subflakes: subflakes,
		Selector:  rest,
	}, nil
}
