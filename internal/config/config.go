package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/nix"
)

// DefaultConfigName — имя конфигурации, если атрибутный путь пуст.
const DefaultConfigName = "default"

// localConfigFiles — файлы конфигурации в корне локального flake.
var localConfigFiles = []string{"om.yaml", "om.json"}

// OmConfig — конфигурация проекта.
type OmConfig struct {
	// FlakeURL — flake без атрибутного пути.
	FlakeURL domain.FlakeURL

	// Reference — атрибутный путь из ссылки (после '#').
	Reference []string

	// Sections — секция → имя конфигурации → значение.
	Sections map[string]map[string]yaml.Node
}

// Load загружает конфигурацию для ссылки на flake.
//
// Если flake не содержит атрибут `om` и нет локального файла,
// возвращается пустая конфигурация.
func Load(ctx context.Context, cmd *nix.Cmd, ref domain.FlakeURL) (*OmConfig, error) {
	base, reference := ref.Split()

	var raw json.RawMessage
	err := nix.EvalJSON(ctx, cmd, base.WithAttr("om"), &raw)
	switch {
	case err == nil:
		return Parse(base, reference, raw)
	case errors.Is(err, nix.ErrMissingAttribute):
		return loadLocal(base, reference)
	default:
		return nil, &Error{Flake: base.String(), Message: "evaluate om attribute", Err: err}
	}
}

// loadLocal читает om.yaml / om.json из локального flake.
func loadLocal(base domain.FlakeURL, reference []string) (*OmConfig, error) {
	dir, ok := base.LocalPath()
	if !ok {
		return Parse(base, reference, nil)
	}

	for _, name := range localConfigFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &Error{Flake: base.String(), Message: "read " + name, Err: err}
		}
		return Parse(base, reference, data)
	}

	return Parse(base, reference, nil)
}

// Parse разбирает документ конфигурации (YAML или JSON).
func Parse(base domain.FlakeURL, reference []string, data []byte) (*OmConfig, error) {
	cfg := &OmConfig{
		FlakeURL:  base,
		Reference: reference,
		Sections:  make(map[string]map[string]yaml.Node),
	}

	if len(data) == 0 {
		return cfg, nil
	}

	var sections map[string]map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, &Error{Flake: base.String(), Message: "malformed document", Err: err}
	}
	if sections != nil {
		cfg.Sections = sections
	}
	return cfg, nil
}

// GetSubConfigUnder декодирует конфигурацию секции key в v.
//
// Имя конфигурации — первый элемент Reference (или "default"),
// остаток Reference возвращается как rest. found=false, если секции нет:
// v не изменяется, rest пуст.
func (c *OmConfig) GetSubConfigUnder(key string, v any) (rest []string, found bool, err error) {
	section, ok := c.Sections[key]
	if !ok {
		return nil, false, nil
	}

	name := DefaultConfigName
	if len(c.Reference) > 0 {
		name = c.Reference[0]
		rest = c.Reference[1:]
	}

	if err := c.decode(key, section, name, v); err != nil {
		return nil, false, err
	}
	return rest, true, nil
}

// GetNamed декодирует конфигурацию key.name в v без учёта Reference.
func (c *OmConfig) GetNamed(key, name string, v any) (bool, error) {
	section, ok := c.Sections[key]
	if !ok {
		return false, nil
	}
	if _, ok := section[name]; !ok {
		return false, nil
	}
	return true, c.decode(key, section, name, v)
}

func (c *OmConfig) decode(key string, section map[string]yaml.Node, name string, v any) error {
	node, ok := section[name]
	if !ok {
		return &Error{
			Flake:   c.FlakeURL.String(),
			Key:     key,
			Message: fmt.Sprintf("no configuration named %q", name),
			Err:     ErrMissingConfigAttribute,
		}
	}
	if err := node.Decode(v); err != nil {
		return &Error{
			Flake:   c.FlakeURL.String(),
			Key:     key + "." + name,
			Message: "decode",
			Err:     err,
		}
	}
	return nil
}
