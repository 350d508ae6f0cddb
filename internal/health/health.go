package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/shaiso/flakeci/internal/config"
	"github.com/shaiso/flakeci/internal/nix"
)

// Key — секция конфигурации с настройками проверок.
const Key = "health"

// DefaultMinNixVersion — минимальная версия Nix по умолчанию.
const DefaultMinNixVersion = "2.16.0"

// ErrHealthGate — проверка окружения не пройдена.
var ErrHealthGate = errors.New("health check failed")

// Status — итог проверки.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Result — результат одной проверки.
type Result struct {
	Status  Status
	Message string

	// Suggestion — что сделать, если проверка не пройдена.
	Suggestion string
}

// Checker — проверка окружения.
type Checker interface {
	Name() string
	Check(ctx context.Context, info *nix.Info) *Result
}

// Config — секция health.<name>.
type Config struct {
	NixVersion NixVersionConfig `yaml:"nix-version"`
}

// NixVersionConfig — настройки проверки версии Nix.
type NixVersionConfig struct {
	MinRequired string `yaml:"min-required"`
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{NixVersion: NixVersionConfig{MinRequired: DefaultMinNixVersion}}
}

// LoadConfig читает health.default из конфигурации проекта.
func LoadConfig(cfg *config.OmConfig) (Config, error) {
	out := DefaultConfig()
	if cfg == nil {
		return out, nil
	}
	if _, err := cfg.GetNamed(Key, config.DefaultConfigName, &out); err != nil {
		return Config{}, err
	}
	if out.NixVersion.MinRequired == "" {
		out.NixVersion.MinRequired = DefaultMinNixVersion
	}
	return out, nil
}

// Checks возвращает проверки, заданные конфигурацией.
func (c Config) Checks() []Checker {
	return []Checker{NixVersionChecker{MinRequired: c.NixVersion.MinRequired}}
}

// NixVersionChecker проверяет, что версия Nix не ниже MinRequired.
type NixVersionChecker struct {
	MinRequired string
}

// Name возвращает имя проверки.
func (NixVersionChecker) Name() string { return "nix-version" }

// Check сравнивает версии по semver.
func (c NixVersionChecker) Check(_ context.Context, info *nix.Info) *Result {
	minVersion, err := nix.ParseVersion(c.MinRequired)
	if err != nil {
		return &Result{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("invalid min-required version %q", c.MinRequired),
		}
	}

	if semver.Compare(info.Version.Semver(), minVersion.Semver()) < 0 {
		return &Result{
			Status:     StatusUnhealthy,
			Message:    fmt.Sprintf("Nix version %s is older than %s", info.Version, minVersion),
			Suggestion: "Upgrade Nix: https://nixos.org/download",
		}
	}

	return &Result{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("Nix version %s (>= %s)", info.Version, minVersion),
	}
}

// GateError — непройденные проверки.
type GateError struct {
	Failed map[string]*Result
}

// Error реализует интерфейс error.
func (e *GateError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for name, r := range e.Failed {
		parts = append(parts, name+": "+r.Message)
	}
	return "health check failed: " + strings.Join(parts, "; ")
}

// Unwrap возвращает ErrHealthGate.
func (e *GateError) Unwrap() error {
	return ErrHealthGate
}

// Gate выполняет проверки и возвращает *GateError, если хотя бы одна не пройдена.
func Gate(ctx context.Context, logger *slog.Logger, info *nix.Info, checks []Checker) error {
	failed := make(map[string]*Result)
	for _, c := range checks {
		r := c.Check(ctx, info)
		if r.Status == StatusHealthy {
			logger.Info("✅ "+r.Message, "check", c.Name())
			continue
		}
		logger.Error("❌ "+r.Message, "check", c.Name(), "suggestion", r.Suggestion)
		failed[c.Name()] = r
	}

	if len(failed) > 0 {
		return &GateError{Failed: failed}
	}
	return nil
}
