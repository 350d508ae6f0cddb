package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/flakeci/internal/domain"
)

func sampleResult() *domain.RunResult {
	res := domain.NewRunResult("github:me/proj", []domain.System{"x86_64-linux", "aarch64-darwin"})
	res.Result["ROOT"] = &domain.StepsResult{
		Lockfile: &domain.LockfileResult{Flake: "github:me/proj"},
		Build: &domain.BuildResult{
			OutPaths: []string{"/nix/store/a-hello"},
			BySystem: map[domain.System][]string{"x86_64-linux": {"/nix/store/a-hello"}},
		},
	}
	return res
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	in := sampleResult()

	require.NoError(t, NewSink(nil).Write(in, path))

	out, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, in.Systems, out.Systems)
	assert.Equal(t, in.Flake, out.Flake)
	assert.Equal(t, in.Result, out.Result)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "systems")
	assert.Contains(t, doc, "flake")
	assert.Contains(t, doc, "result")
}

func TestWrite_EmptyResultMapIsObject(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSink(&buf).Write(domain.NewRunResult(".", []domain.System{"x86_64-linux"}), Stdout))
	assert.Contains(t, buf.String(), `"result": {}`)
}

func TestWrite_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 10000), 0o644))

	require.NoError(t, NewSink(nil).Write(sampleResult(), path))
	_, err := Read(path)
	assert.NoError(t, err)
}

func TestWrite_NoDestination(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSink(&buf).Write(sampleResult(), ""))
	assert.Empty(t, buf.String())
}

func TestWrite_Stdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSink(&buf).Write(sampleResult(), Stdout))

	out, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, domain.FlakeURL("github:me/proj"), out.Flake)
}

func TestWrite_Failure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "result.json")
	err := NewSink(nil).Write(sampleResult(), path)

	assert.ErrorIs(t, err, ErrIO)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, path, ioErr.Path)
}

func TestRead_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := Read(path)
	assert.ErrorIs(t, err, ErrIO)
}
