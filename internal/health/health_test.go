package health

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/flakeci/internal/config"
	"github.com/shaiso/flakeci/internal/nix"
)

func info(major, minor, patch int) *nix.Info {
	return &nix.Info{Version: nix.Version{Major: major, Minor: minor, Patch: patch}}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNixVersionChecker(t *testing.T) {
	tests := []struct {
		name    string
		min     string
		info    *nix.Info
		healthy bool
	}{
		{name: "newer", min: "2.16.0", info: info(2, 18, 1), healthy: true},
		{name: "equal", min: "2.16.0", info: info(2, 16, 0), healthy: true},
		{name: "minor older", min: "2.16.0", info: info(2, 9, 9), healthy: false},
		{name: "major newer", min: "2.16.0", info: info(3, 0, 0), healthy: true},
		{name: "invalid min", min: "latest", info: info(2, 18, 0), healthy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NixVersionChecker{MinRequired: tt.min}.Check(context.Background(), tt.info)
			assert.Equal(t, tt.healthy, r.Status == StatusHealthy, r.Message)
		})
	}
}

func TestGate(t *testing.T) {
	checks := DefaultConfig().Checks()

	require.NoError(t, Gate(context.Background(), discard(), info(2, 24, 0), checks))

	err := Gate(context.Background(), discard(), info(2, 3, 0), checks)
	assert.ErrorIs(t, err, ErrHealthGate)

	var gErr *GateError
	require.ErrorAs(t, err, &gErr)
	assert.Contains(t, gErr.Failed, "nix-version")
}

func TestLoadConfig(t *testing.T) {
	cfg, err := config.Parse(".", nil, []byte(`{"health": {"default": {"nix-version": {"min-required": "2.20.0"}}}}`))
	require.NoError(t, err)

	hc, err := LoadConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "2.20.0", hc.NixVersion.MinRequired)

	empty, err := config.Parse(".", nil, nil)
	require.NoError(t, err)
	hc, err = LoadConfig(empty)
	require.NoError(t, err)
	assert.Equal(t, DefaultMinNixVersion, hc.NixVersion.MinRequired)
}
