package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/nix/nixtest"
)

const ciDoc = `{
  "ci": {
    "default": {
      "ROOT": {},
      "dev": {"dir": "dev", "systems": ["x86_64-linux"]}
    },
    "release": {
      "ROOT": {"steps": {"flake-check": {"enable": true}}}
    }
  },
  "health": {
    "default": {"nix-version": {"min-required": "2.18.0"}}
  }
}`

func TestLoad_FromFlakeAttribute(t *testing.T) {
	r := nixtest.NewRunner().On("eval --json github:a/b#om", nixtest.Response{Stdout: ciDoc})

	cfg, err := Load(context.Background(), nixtest.NewCmd(r), "github:a/b#default.dev")
	require.NoError(t, err)
	assert.Equal(t, domain.FlakeURL("github:a/b"), cfg.FlakeURL)
	assert.Equal(t, []string{"default", "dev"}, cfg.Reference)

	proj, err := cfg.ProjectCI()
	require.NoError(t, err)
	assert.Equal(t, []string{"ROOT", "dev"}, proj.Subflakes.Names())
	assert.Equal(t, []string{"dev"}, proj.Selector)
	assert.Equal(t, "dev", proj.Subflakes["dev"].Dir)
	assert.Equal(t, []domain.System{"x86_64-linux"}, proj.Subflakes["dev"].Systems)
}

func TestLoad_NamedConfiguration(t *testing.T) {
	cfg, err := Parse("github:a/b", []string{"release"}, []byte(ciDoc))
	require.NoError(t, err)

	proj, err := cfg.ProjectCI()
	require.NoError(t, err)
	assert.Equal(t, []string{"ROOT"}, proj.Subflakes.Names())
	assert.Empty(t, proj.Selector)
	assert.True(t, proj.Subflakes["ROOT"].Steps.FlakeCheck.Enable)
}

func TestProjectCI_UnknownConfigurationName(t *testing.T) {
	cfg, err := Parse(".", []string{"nope"}, []byte(ciDoc))
	require.NoError(t, err)

	_, err = cfg.ProjectCI()
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, ErrMissingConfigAttribute)
}

func TestProjectCI_DefaultWhenSectionMissing(t *testing.T) {
	cfg, err := Parse(".", nil, []byte(`{"health": {}}`))
	require.NoError(t, err)

	proj, err := cfg.ProjectCI()
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RootSubflakeName}, proj.Subflakes.Names())
	assert.Empty(t, proj.Selector)
}

func TestProjectCI_EmptyPlan(t *testing.T) {
	cfg, err := Parse(".", nil, []byte(`{"ci": {"default": {}}}`))
	require.NoError(t, err)

	proj, err := cfg.ProjectCI()
	require.NoError(t, err)
	assert.Empty(t, proj.Subflakes)
	assert.NotNil(t, proj.Subflakes)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(".", nil, []byte(`{"ci": [1, 2`))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoad_LocalFileFallback(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := "ci:\n  default:\n    api:\n      dir: api\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "om.yaml"), []byte(yamlDoc), 0o644))

	r := nixtest.NewRunner().On("eval", nixtest.Response{
		ExitCode: 1,
		Stderr:   "error: flake does not provide attribute 'om'",
	})

	cfg, err := Load(context.Background(), nixtest.NewCmd(r), domain.FlakeURL(dir))
	require.NoError(t, err)

	proj, err := cfg.ProjectCI()
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, proj.Subflakes.Names())
}

func TestLoad_EvalFailure(t *testing.T) {
	r := nixtest.NewRunner().On("eval", nixtest.Response{ExitCode: 1, Stderr: "error: infinite recursion"})

	_, err := Load(context.Background(), nixtest.NewCmd(r), "github:a/b")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestGetNamed(t *testing.T) {
	cfg, err := Parse(".", []string{"release"}, []byte(ciDoc))
	require.NoError(t, err)

	var health struct {
		NixVersion struct {
			MinRequired string `yaml:"min-required"`
		} `yaml:"nix-version"`
	}
	found, err := cfg.GetNamed("health", "default", &health)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2.18.0", health.NixVersion.MinRequired)

	found, err = cfg.GetNamed("health", "other", &health)
	require.NoError(t, err)
	assert.False(t, found)
}
