package engine

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/shaiso/flakeci/internal/domain"
)

// Имена встроенных шагов.
const (
	StepLockfile   = "lockfile"
	StepBuild      = "build"
	StepFlakeCheck = "flake-check"
)

var builtinSteps = map[string]bool{
	StepLockfile:   true,
	StepBuild:      true,
	StepFlakeCheck: true,
}

// Validate выполняет полную валидацию плана.
//
// Проверяет:
// - Имена subflakes
// - Директории subflakes (относительные, внутри flake)
// - Типы и имена пользовательских шагов
// - Шаг, названный селектором
//
// Селектор, называющий несуществующий subflake, ошибкой не считается:
// такой прогон ничего не выполняет.
func Validate(plan *Plan) error {
	for _, name := range plan.Subflakes.Names() {
		if err := ValidateSubflake(name, plan.Subflakes[name]); err != nil {
			return err
		}
	}

	return validateSelector(plan)
}

// ValidateSubflake валидирует один subflake.
func ValidateSubflake(name string, sub *domain.Subflake) error {
	if name == "" {
		return NewValidationError("", "name", "subflake has empty name", ErrEmptySubflakeName)
	}
	if strings.ContainsAny(name, ".#/ ") {
		return NewValidationError(name, "name",
			fmt.Sprintf("subflake name %q contains '.', '#', '/' or space", name), ErrInvalidSubflakeName)
	}
	if sub == nil {
		return nil
	}

	if err := validateDir(name, sub.Dir); err != nil {
		return err
	}

	for stepName, step := range sub.Steps.Custom {
		if err := validateCustomStep(name, stepName, step); err != nil {
			return err
		}
	}

	return nil
}

// validateDir проверяет, что директория относительная и не выходит за корень flake.
func validateDir(subflake, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if strings.HasPrefix(dir, "/") {
		return NewValidationError(subflake, "dir",
			fmt.Sprintf("dir %q must be relative", dir), ErrInvalidDir)
	}
	clean := path.Clean(dir)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return NewValidationError(subflake, "dir",
			fmt.Sprintf("dir %q escapes the flake root", dir), ErrInvalidDir)
	}
	return nil
}

func validateCustomStep(subflake, stepName string, step domain.CustomStepConfig) error {
	if builtinSteps[stepName] {
		return NewValidationError(subflake, "steps.custom",
			fmt.Sprintf("custom step %q shadows a built-in step", stepName), ErrDuplicateStepName)
	}

	switch step.Type {
	case domain.CustomStepApp:
	case domain.CustomStepDevShell:
		if len(step.Command) == 0 {
			return NewValidationError(subflake, "steps.custom."+stepName+".command",
				fmt.Sprintf("devshell step %q has no command", stepName), ErrEmptyCommand)
		}
	case "":
		return NewValidationError(subflake, "steps.custom."+stepName+".type",
			fmt.Sprintf("custom step %q has empty type", stepName), ErrUnknownStepType)
	default:
		return NewValidationError(subflake, "steps.custom."+stepName+".type",
			fmt.Sprintf("unknown step type: %s", step.Type), ErrUnknownStepType)
	}

	return nil
}

// validateSelector проверяет, что выбранный шаг есть в выбранном subflake.
func validateSelector(plan *Plan) error {
	sel := plan.Selector
	if sel.Step == "" {
		return nil
	}

	sub, ok := plan.Subflakes[sel.Subflake]
	if !ok || sub == nil {
		return nil
	}

	for _, name := range StepNames(sub) {
		if name == sel.Step {
			return nil
		}
	}
	return NewValidationError(sel.Subflake, "selector",
		fmt.Sprintf("subflake has no enabled step %q", sel.Step), ErrUnknownStep)
}

// StepNames возвращает имена включённых шагов subflake в порядке выполнения:
// lockfile, build, flake-check, затем пользовательские шаги по имени.
func StepNames(sub *domain.Subflake) []string {
	var names []string
	if sub.Steps.Lockfile.Enable {
		names = append(names, StepLockfile)
	}
	if sub.Steps.Build.Enable {
		names = append(names, StepBuild)
	}
	if sub.Steps.FlakeCheck.Enable {
		names = append(names, StepFlakeCheck)
	}
	custom := make([]string, 0, len(sub.Steps.Custom))
	for name := range sub.Steps.Custom {
		custom = append(custom, name)
	}
	sort.Strings(custom)
	return append(names, custom...)
}
