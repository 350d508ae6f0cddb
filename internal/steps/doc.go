// Package steps содержит шаги CI, выполняемые для одного subflake.
//
// # Виды шагов
//
// Набор видов закрыт и регистрируется в DefaultRegistry в порядке выполнения:
//
//	lockfile     nix flake lock --no-update-lock-file <url>
//	build        nix build github:srid/devour-flake --override-input flake <url>
//	             --override-input systems github:nix-systems/<system>   (для каждой платформы)
//	flake-check  nix flake check <url>
//	custom       nix run <url>#<app> -- <args> | nix develop <url>#<shell> -c <command>
//
// lockfile и flake-check выполняются один раз, build — по разу на каждую
// платформу прогона. Custom-шаг пропускается, если его systems не пересекается
// с платформами прогона.
//
// # Pipeline
//
//	pipeline := steps.DefaultRegistry().Plan(subflake)
//	res, err := pipeline.Execute(ctx, &steps.Request{...})
//
// Шаги выполняются строго по порядку. Первая ошибка прерывает pipeline
// и возвращается как *StepError (errors.Is(err, ErrStepExecution)).
//
// # Файлы пакета
//
//   - step.go       — интерфейс Step, Request, Outcome
//   - registry.go   — Registry видов шагов
//   - pipeline.go   — Pipeline
//   - lockfile.go, build.go, flakecheck.go, custom.go — виды шагов
package steps
