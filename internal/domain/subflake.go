package domain

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// RootSubflakeName — имя subflake по умолчанию, если секция ci не задана.
const RootSubflakeName = "ROOT"

// Subflake — независимо собираемая часть проекта.
//
// Имя берётся из ключа в SubflakesConfig и не хранится в конфигурации.
type Subflake struct {
	// Name — имя subflake (ключ в SubflakesConfig).
	Name string `yaml:"-" json:"-"`

	// Skip — исключить subflake из прогона.
	Skip bool `yaml:"skip" json:"skip,omitempty"`

	// Dir — поддиректория flake относительно корня. По умолчанию ".".
	Dir string `yaml:"dir" json:"dir"`

	// OverrideInputs — переопределения inputs (имя input → flake URL).
	OverrideInputs map[string]FlakeURL `yaml:"overrideInputs" json:"overrideInputs,omitempty"`

	// Systems — поддерживаемые платформы. nil означает "любая платформа".
	Systems []System `yaml:"systems" json:"systems,omitempty"`

	// Steps — настройки шагов.
	Steps StepsConfig `yaml:"steps" json:"steps"`
}

// DefaultSubflake возвращает subflake с настройками по умолчанию.
func DefaultSubflake(name string) *Subflake {
	return &Subflake{
		Name:  name,
		Dir:   ".",
		Steps: DefaultStepsConfig(),
	}
}

// UnmarshalYAML заполняет значения по умолчанию до декодирования,
// поэтому отсутствующие поля сохраняют дефолты.
func (s *Subflake) UnmarshalYAML(node *yaml.Node) error {
	type plain Subflake
	v := plain(*DefaultSubflake(s.Name))
	if err := node.Decode(&v); err != nil {
		return err
	}
	if v.Dir == "" {
		v.Dir = "."
	}
	*s = Subflake(v)
	return nil
}

// CanRunOn проверяет совместимость subflake с набором платформ.
//
// Совместимость есть, если Systems не задан, либо пересечение
// Systems и systems непусто.
func (s *Subflake) CanRunOn(systems []System) bool {
	if s.Systems == nil {
		return true
	}
	for _, sys := range s.Systems {
		if ContainsSystem(systems, sys) {
			return true
		}
	}
	return false
}

// SubflakesConfig — набор subflakes по имени.
type SubflakesConfig map[string]*Subflake

// DefaultSubflakesConfig — конфигурация, если в проекте нет секции ci:
// единственный subflake ROOT в корне flake.
func DefaultSubflakesConfig() SubflakesConfig {
	return SubflakesConfig{
		RootSubflakeName: DefaultSubflake(RootSubflakeName),
	}
}

// UnmarshalYAML декодирует map и проставляет Name каждому subflake.
func (c *SubflakesConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := make(map[string]yaml.Node)
	if err := node.Decode(&raw); err != nil {
		return err
	}

	out := make(SubflakesConfig, len(raw))
	for name, n := range raw {
		if n.ShortTag() == "!!null" {
			out[name] = DefaultSubflake(name)
			continue
		}
		sub := &Subflake{Name: name}
		if err := n.Decode(sub); err != nil {
			return err
		}
		sub.Name = name
		out[name] = sub
	}
	*c = out
	return nil
}

// Names возвращает имена subflakes в лексикографическом порядке.
//
// Порядок определяет последовательность выполнения и то,
// на каком subflake прерывается прогон при ошибке.
func (c SubflakesConfig) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StepsConfig — настройки шагов subflake.
type StepsConfig struct {
	// Lockfile — проверка, что flake.lock актуален.
	Lockfile LockfileStepConfig `yaml:"lockfile" json:"lockfile"`

	// Build — сборка всех outputs flake.
	Build BuildStepConfig `yaml:"build" json:"build"`

	// FlakeCheck — запуск `nix flake check`.
	FlakeCheck FlakeCheckStepConfig `yaml:"flake-check" json:"flake-check"`

	// Custom — пользовательские шаги (имя → описание).
	Custom map[string]CustomStepConfig `yaml:"custom" json:"custom,omitempty"`
}

// DefaultStepsConfig — lockfile и build включены, flake-check выключен.
func DefaultStepsConfig() StepsConfig {
	return StepsConfig{
		Lockfile: LockfileStepConfig{Enable: true},
		Build:    BuildStepConfig{Enable: true},
	}
}

// LockfileStepConfig — настройки шага lockfile.
type LockfileStepConfig struct {
	Enable bool `yaml:"enable" json:"enable"`
}

// BuildStepConfig — настройки шага build.
type BuildStepConfig struct {
	Enable bool `yaml:"enable" json:"enable"`

	// Impure — передать --impure в nix build.
	Impure bool `yaml:"impure" json:"impure,omitempty"`
}

// FlakeCheckStepConfig — настройки шага flake-check.
type FlakeCheckStepConfig struct {
	Enable bool `yaml:"enable" json:"enable"`
}

// CustomStepType — вид пользовательского шага.
type CustomStepType string

const (
	// CustomStepApp — запуск flake app через `nix run`.
	CustomStepApp CustomStepType = "app"

	// CustomStepDevShell — команда внутри devShell через `nix develop -c`.
	CustomStepDevShell CustomStepType = "devshell"
)

// CustomStepConfig — пользовательский шаг.
type CustomStepConfig struct {
	// Type — "app" или "devshell".
	Type CustomStepType `yaml:"type" json:"type"`

	// Name — имя app или devShell. По умолчанию "default".
	Name string `yaml:"name" json:"name,omitempty"`

	// Args — аргументы app (для type=app).
	Args []string `yaml:"args" json:"args,omitempty"`

	// Command — команда внутри devShell (для type=devshell).
	Command []string `yaml:"command" json:"command,omitempty"`

	// Systems — платформы, на которых шаг выполняется. nil — любая.
	Systems []System `yaml:"systems" json:"systems,omitempty"`
}

// TargetName возвращает имя app/devShell с учётом значения по умолчанию.
func (c CustomStepConfig) TargetName() string {
	if c.Name == "" {
		return "default"
	}
	return c.Name
}

// CanRunOn проверяет, совместим ли шаг с набором платформ.
func (c CustomStepConfig) CanRunOn(systems []System) bool {
	if c.Systems == nil {
		return true
	}
	for _, sys := range c.Systems {
		if ContainsSystem(systems, sys) {
			return true
		}
	}
	return false
}
