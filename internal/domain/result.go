package domain

// RunResult — итог успешного CI-прогона.
//
// Result содержит только subflakes, чей pipeline был запущен;
// пропущенные subflakes в отчёт не попадают.
type RunResult struct {
	// Systems — платформы, для которых выполнялся прогон.
	Systems []System `json:"systems"`

	// Flake — flake, для которого выполнялся прогон.
	Flake FlakeURL `json:"flake"`

	// Result — результаты шагов по имени subflake.
	Result map[string]*StepsResult `json:"result"`
}

// NewRunResult создаёт пустой RunResult.
func NewRunResult(flake FlakeURL, systems []System) *RunResult {
	if systems == nil {
		systems = []System{}
	}
	return &RunResult{
		Systems: systems,
		Flake:   flake,
		Result:  make(map[string]*StepsResult),
	}
}

// StepsResult — результаты шагов одного subflake.
type StepsResult struct {
	Lockfile   *LockfileResult         `json:"lockfile,omitempty"`
	Build      *BuildResult            `json:"build,omitempty"`
	FlakeCheck *FlakeCheckResult       `json:"flake-check,omitempty"`
	Custom     map[string]CustomResult `json:"custom,omitempty"`
}

// Record сохраняет результат шага в StepsResult.
//
// Набор типов результатов закрыт: неизвестные значения игнорируются.
func (r *StepsResult) Record(v any) {
	switch v := v.(type) {
	case *LockfileResult:
		r.Lockfile = v
	case *BuildResult:
		r.Build = v
	case *FlakeCheckResult:
		r.FlakeCheck = v
	case *CustomResult:
		if r.Custom == nil {
			r.Custom = make(map[string]CustomResult)
		}
		r.Custom[v.Name] = *v
	}
}

// LockfileResult — результат шага lockfile.
type LockfileResult struct {
	// Flake — проверенный flake.
	Flake FlakeURL `json:"flake"`
}

// BuildResult — результат шага build.
type BuildResult struct {
	// OutPaths — все собранные store paths (отсортированы, без повторов).
	OutPaths []string `json:"outPaths"`

	// BySystem — собранные store paths по платформам.
	BySystem map[System][]string `json:"bySystem,omitempty"`

	// AllDeps — замыкание зависимостей (только с --include-all-dependencies).
	AllDeps []string `json:"allDeps,omitempty"`
}

// FlakeCheckResult — результат шага flake-check.
type FlakeCheckResult struct {
	Flake FlakeURL `json:"flake"`
}

// CustomResult — результат пользовательского шага.
type CustomResult struct {
	Name   string         `json:"-"`
	Type   CustomStepType `json:"type"`
	Target FlakeURL       `json:"target"`
}
