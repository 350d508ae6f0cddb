package engine

import (
	"fmt"
	"strings"
)

// Selector сужает прогон до одного subflake и, опционально, одного шага.
//
// Нулевое значение выбирает все subflakes.
type Selector struct {
	Subflake string
	Step     string
}

// ParseSelector разбирает остаток атрибутного пути после имени конфигурации.
//
//	[]                → все subflakes
//	["dev"]           → subflake dev
//	["dev", "build"]  → шаг build subflake dev
func ParseSelector(path []string) (Selector, error) {
	switch len(path) {
	case 0:
		return Selector{}, nil
	case 1:
		return Selector{Subflake: path[0]}, nil
	case 2:
		return Selector{Subflake: path[0], Step: path[1]}, nil
	default:
		return Selector{}, NewValidationError("", "selector",
			fmt.Sprintf("selector %q has more than two attributes", strings.Join(path, ".")),
			ErrInvalidSelector)
	}
}

// IsZero возвращает true, если селектор не задан.
func (s Selector) IsZero() bool {
	return s.Subflake == ""
}

// Matches проверяет, выбран ли subflake с именем name.
func (s Selector) Matches(name string) bool {
	return s.Subflake == "" || s.Subflake == name
}

// String возвращает селектор в виде атрибутного пути.
func (s Selector) String() string {
	if s.Step == "" {
		return s.Subflake
	}
	return s.Subflake + "." + s.Step
}
