package domain

import "strings"

// RunSpec — параметры одного CI-прогона (`ci run`).
//
// Создаётся один раз из аргументов командной строки и не изменяется,
// кроме однократной нормализации Preprocess перед запуском.
type RunSpec struct {
	// On — удалённый store, на котором выполнить прогон. nil — локально.
	On *StoreURI

	// Systems — ссылка на flake со списком платформ. nil — текущая платформа.
	Systems *FlakeURL

	// Results — путь для JSON-отчёта. "" — не сохранять, "-" — stdout.
	Results string

	// FlakeRef — flake и (опционально) атрибутный путь к конфигурации.
	FlakeRef FlakeURL

	// Steps — аргументы, передаваемые шагам.
	Steps StepsArgs
}

// StepsArgs — аргументы для всех шагов.
type StepsArgs struct {
	// IncludeAllDependencies — добавить в отчёт всё замыкание зависимостей.
	IncludeAllDependencies bool

	// ExtraBuildArgs — дополнительные аргументы nix build (после "--").
	ExtraBuildArgs []string
}

// Preprocess нормализует параметры перед прогоном.
//
// Удаляет пустые аргументы, ведущий разделитель "--" и любые
// пересланные --on/--on=..., чтобы повторный вызов не ушёл в удалённый режим.
func (s *RunSpec) Preprocess() {
	if s.FlakeRef == "" {
		s.FlakeRef = DefaultFlakeURL
	}
	s.Steps.ExtraBuildArgs = stripRemoteFlags(s.Steps.ExtraBuildArgs)
}

func stripRemoteFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		switch {
		case arg == "":
			continue
		case arg == "--" && len(out) == 0:
			continue
		case arg == "--on":
			i++ // пропускаем значение
			continue
		case strings.HasPrefix(arg, "--on="):
			continue
		}
		out = append(out, arg)
	}
	return out
}

// ToCLIArgs превращает RunSpec обратно в аргументы `ci run`.
//
// Results не сериализуется: место отчёта определяет вызывающая сторона.
func (s RunSpec) ToCLIArgs() []string {
	var args []string

	if s.On != nil {
		args = append(args, "--on", s.On.String())
	}

	if s.Systems != nil {
		args = append(args, "--systems", s.Systems.String())
	}

	flake := s.FlakeRef
	if flake == "" {
		flake = DefaultFlakeURL
	}
	args = append(args, flake.String())

	args = append(args, s.Steps.ToCLIArgs()...)
	return args
}

// ToCLIArgs возвращает аргументы шагов в формате командной строки.
func (a StepsArgs) ToCLIArgs() []string {
	var args []string
	if a.IncludeAllDependencies {
		args = append(args, "--include-all-dependencies")
	}
	if len(a.ExtraBuildArgs) > 0 {
		args = append(args, "--")
		args = append(args, a.ExtraBuildArgs...)
	}
	return args
}

// Transport — способ выполнения прогона: LocalRun или RemoteRun.
type Transport interface {
	transport()
}

// LocalRun — прогон на локальном Nix store.
type LocalRun struct {
	Spec RunSpec
}

// RemoteRun — прогон, пересылаемый на удалённый store.
//
// Spec.On всегда nil: повторный вызов на удалённой стороне выполняется локально.
type RemoteRun struct {
	Spec RunSpec
	Host StoreURI
}

func (LocalRun) transport()  {}
func (RemoteRun) transport() {}

// Transport выбирает способ выполнения прогона.
func (s RunSpec) Transport() Transport {
	if s.On == nil {
		return LocalRun{Spec: s}
	}
	host := *s.On
	spec := s
	spec.On = nil
	return RemoteRun{Spec: spec, Host: host}
}
