package nix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shaiso/flakeci/internal/domain"
)

// Config — выборка из конфигурации Nix (`nix config show --json`).
type Config struct {
	// System — платформа текущей машины.
	System domain.System

	// ExtraPlatforms — дополнительные платформы, которые может собирать машина.
	ExtraPlatforms []domain.System
}

// configValue — формат одного значения в `nix config show --json`.
type configValue struct {
	Value json.RawMessage `json:"value"`
}

// GetConfig читает конфигурацию Nix.
//
// Сначала пробует `nix config show`, затем устаревший `nix show-config`.
func GetConfig(ctx context.Context, cmd *Cmd) (*Config, error) {
	raw := make(map[string]configValue)
	err := cmd.RunJSON(ctx, &raw, "config", "show", "--json")
	if err != nil {
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			return nil, err
		}
		raw = make(map[string]configValue)
		if err := cmd.RunJSON(ctx, &raw, "show-config", "--json"); err != nil {
			return nil, fmt.Errorf("read nix config: %w", err)
		}
	}
	return parseConfig(raw)
}

func parseConfig(raw map[string]configValue) (*Config, error) {
	sys, ok := raw["system"]
	if !ok {
		return nil, fmt.Errorf("%w: nix config has no 'system'", ErrUnexpectedOutput)
	}

	cfg := &Config{}
	var system string
	if err := json.Unmarshal(sys.Value, &system); err != nil || system == "" {
		return nil, fmt.Errorf("%w: nix config 'system' is not a string", ErrUnexpectedOutput)
	}
	cfg.System = domain.System(system)

	if extra, ok := raw["extra-platforms"]; ok {
		var platforms []string
		if err := json.Unmarshal(extra.Value, &platforms); err == nil {
			for _, p := range platforms {
				cfg.ExtraPlatforms = append(cfg.ExtraPlatforms, domain.System(p))
			}
		}
	}

	return cfg, nil
}
