package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/exitcode"
	"github.com/shaiso/flakeci/internal/nix/nixtest"
	"github.com/shaiso/flakeci/internal/orchestrator"
	"github.com/shaiso/flakeci/internal/repo"
	"github.com/shaiso/flakeci/internal/report"
	"github.com/shaiso/flakeci/internal/steps"
)

const testFlake = "github:a/b"

const omDoc = `{
  "ci": {
    "default": {
      "ROOT": {"steps": {"build": {"enable": false}, "flake-check": {"enable": true}}},
      "docs": {"dir": "docs", "systems": ["aarch64-darwin"]}
    }
  }
}`

// fakeNix возвращает Runner с ответами для успешного локального прогона.
func fakeNix(version string) *nixtest.Runner {
	return nixtest.NewRunner().
		On("nix --version", nixtest.Response{Stdout: "nix (Nix) " + version + "\n"}).
		On("config show", nixtest.Response{Stdout: `{"system":{"value":"x86_64-linux"}}`}).
		On("eval --json "+testFlake+"#om", nixtest.Response{Stdout: omDoc})
}

// memHistory хранит записи истории в памяти.
type memHistory struct {
	records []*repo.RunRecord
}

func (h *memHistory) Save(_ context.Context, rec *repo.RunRecord) error {
	h.records = append(h.records, rec)
	return nil
}

func (h *memHistory) List(context.Context, repo.RunFilter) ([]repo.RunRecord, error) {
	out := make([]repo.RunRecord, len(h.records))
	for i, r := range h.records {
		out[i] = *r
	}
	return out, nil
}

func (h *memHistory) GetByID(_ context.Context, id uuid.UUID) (*repo.RunRecord, error) {
	for _, r := range h.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repo.ErrNotFound
}

func newTestService(r *nixtest.Runner, stdout io.Writer, history HistoryStore) *Service {
	svc := NewService(nixtest.NewCmd(r), stdout, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.History = history
	return svc
}

func TestBuildRunSpec(t *testing.T) {
	tests := []struct {
		name    string
		flags   runFlags
		args    []string
		dash    int
		want    domain.FlakeURL
		extra   []string
		wantErr bool
	}{
		{name: "no args", dash: -1},
		{name: "flake ref", args: []string{".#default.dev"}, dash: -1, want: ".#default.dev"},
		{name: "extra args", args: []string{"github:a/b", "--rebuild"}, dash: 1, want: "github:a/b", extra: []string{"--rebuild"}},
		{name: "only extra args", args: []string{"-j", "4"}, dash: 0, extra: []string{"-j", "4"}},
		{name: "two flake refs", args: []string{".", "github:a/b"}, dash: -1, wantErr: true},
		{name: "bad store URI", flags: runFlags{on: "http://host"}, dash: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := buildRunSpec(tt.flags, tt.args, tt.dash)
			if tt.wantErr {
				if !errors.Is(err, exitcode.ErrUsage) {
					t.Fatalf("expected usage error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if spec.FlakeRef != tt.want {
				t.Errorf("FlakeRef = %q, want %q", spec.FlakeRef, tt.want)
			}
			if strings.Join(spec.Steps.ExtraBuildArgs, " ") != strings.Join(tt.extra, " ") {
				t.Errorf("ExtraBuildArgs = %v, want %v", spec.Steps.ExtraBuildArgs, tt.extra)
			}
		})
	}
}

func TestBuildRunSpec_RemoteAndSystems(t *testing.T) {
	f := runFlags{on: "ssh-ng://builder@mac.local", systems: "github:nix-systems/default-darwin", results: "-", includeDeps: true}

	spec, err := buildRunSpec(f, nil, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.On == nil || spec.On.SSHTarget() != "builder@mac.local" {
		t.Errorf("On = %v", spec.On)
	}
	if spec.Systems == nil || *spec.Systems != "github:nix-systems/default-darwin" {
		t.Errorf("Systems = %v", spec.Systems)
	}
	if spec.Results != report.Stdout || !spec.Steps.IncludeAllDependencies {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestService_Run_Local(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results.json")
	metrics := filepath.Join(dir, "ci.prom")

	r := fakeNix("2.18.1")
	history := &memHistory{}
	var stdout bytes.Buffer

	res, err := newTestService(r, &stdout, history).Run(context.Background(), domain.RunSpec{
		FlakeRef: testFlake,
		Results:  results,
	}, Options{MetricsFile: metrics})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}

	// docs требует aarch64-darwin и пропускается
	if _, ok := res.Result["docs"]; ok {
		t.Error("docs should be skipped on x86_64-linux")
	}
	root := res.Result["ROOT"]
	if root == nil || root.Lockfile == nil || root.FlakeCheck == nil || root.Build != nil {
		t.Fatalf("unexpected ROOT result: %+v", root)
	}

	written, err := report.Read(results)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	if written.Flake != testFlake {
		t.Errorf("Flake = %q, want %q", written.Flake, testFlake)
	}
	if len(written.Systems) != 1 || written.Systems[0] != "x86_64-linux" {
		t.Errorf("Systems = %v", written.Systems)
	}

	if len(history.records) != 1 || history.records[0].Status != repo.StatusPassed {
		t.Fatalf("unexpected history: %+v", history.records)
	}

	prom, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(prom), `flakeci_runs_total{outcome="passed"} 1`) {
		t.Errorf("metrics missing run counter:\n%s", prom)
	}

	if len(r.CallsMatching("flake lock")) != 1 || len(r.CallsMatching("flake check")) != 1 {
		t.Errorf("unexpected calls: %v", r.Calls())
	}
}

func TestService_Run_ResultsToStdout(t *testing.T) {
	var stdout bytes.Buffer

	_, err := newTestService(fakeNix("2.18.1"), &stdout, nil).Run(context.Background(), domain.RunSpec{
		FlakeRef: testFlake,
		Results:  report.Stdout,
	}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res, err := report.Decode(&stdout)
	if err != nil {
		t.Fatalf("decode stdout: %v", err)
	}
	if _, ok := res.Result["ROOT"]; !ok {
		t.Errorf("ROOT missing from results: %+v", res.Result)
	}
}

func TestService_Run_ReportWriteFailure(t *testing.T) {
	results := filepath.Join(t.TempDir(), "missing", "results.json")
	history := &memHistory{}

	_, err := newTestService(fakeNix("2.18.1"), io.Discard, history).Run(context.Background(), domain.RunSpec{
		FlakeRef: testFlake,
		Results:  results,
	}, Options{})
	if !errors.Is(err, report.ErrIO) {
		t.Fatalf("expected report.ErrIO, got %v", err)
	}
	if len(history.records) != 1 || history.records[0].Status != repo.StatusFailed {
		t.Errorf("unexpected history: %+v", history.records)
	}
}

func TestService_Run_HealthGate(t *testing.T) {
	results := filepath.Join(t.TempDir(), "results.json")
	r := fakeNix("2.10.0")
	history := &memHistory{}

	_, err := newTestService(r, io.Discard, history).Run(context.Background(), domain.RunSpec{
		FlakeRef: testFlake,
		Results:  results,
	}, Options{})
	if code := exitcode.FromError(err); code != exitcode.HealthGateFailure {
		t.Fatalf("exit code = %d, want %d (err: %v)", code, exitcode.HealthGateFailure, err)
	}

	if _, statErr := os.Stat(results); !os.IsNotExist(statErr) {
		t.Error("results must not be written for a failed run")
	}
	if len(r.CallsMatching("flake lock")) != 0 {
		t.Error("no steps should run after a failed health gate")
	}
	if len(history.records) != 1 || history.records[0].Status != repo.StatusFailed || history.records[0].Result != nil {
		t.Errorf("unexpected history: %+v", history.records)
	}
}

func TestService_Run_StepFailure(t *testing.T) {
	r := nixtest.NewRunner().
		On("flake lock", nixtest.Response{ExitCode: 1, Stderr: "error: lock file is out of date"})
	r.On("nix --version", nixtest.Response{Stdout: "nix (Nix) 2.18.1\n"}).
		On("config show", nixtest.Response{Stdout: `{"system":{"value":"x86_64-linux"}}`}).
		On("eval --json "+testFlake+"#om", nixtest.Response{Stdout: omDoc})

	_, err := newTestService(r, io.Discard, nil).Run(context.Background(), domain.RunSpec{FlakeRef: testFlake}, Options{})

	var subErr *orchestrator.SubflakeError
	if !errors.As(err, &subErr) || subErr.Name != "ROOT" {
		t.Fatalf("expected SubflakeError for ROOT, got %v", err)
	}
	if !errors.Is(err, steps.ErrStepExecution) {
		t.Errorf("expected ErrStepExecution in chain, got %v", err)
	}
	if code := exitcode.FromError(err); code != exitcode.GeneralError {
		t.Errorf("exit code = %d, want %d", code, exitcode.GeneralError)
	}
	if len(r.CallsMatching("flake check")) != 0 {
		t.Error("flake check must not run after lockfile failed")
	}
}

func TestRunCmd(t *testing.T) {
	results := filepath.Join(t.TempDir(), "out.json")
	var stdout, stderr bytes.Buffer

	cmd := NewRunCmd(
		func() *Service { return newTestService(fakeNix("2.18.1"), &stdout, nil) },
		func() *Output { return NewOutputTo(&stdout, &stderr, false) },
	)
	cmd.SetArgs([]string{"-o", results, "--metrics-file", "", testFlake})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, err := report.Read(results); err != nil {
		t.Errorf("results not written: %v", err)
	}
	if !strings.Contains(stderr.String(), "ROOT") || !strings.Contains(stderr.String(), "lockfile,flake-check") {
		t.Errorf("summary missing:\n%s", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
}

func TestRunCmd_UsageError(t *testing.T) {
	cmd := NewRunCmd(
		func() *Service { t.Fatal("service must not be created"); return nil },
		func() *Output { return NewOutputTo(io.Discard, io.Discard, false) },
	)
	cmd.SetArgs([]string{".", "github:a/b"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	if exitcode.FromError(err) != exitcode.UsageError {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestSummaryRows(t *testing.T) {
	res := domain.NewRunResult(".", []domain.System{"x86_64-linux"})
	res.Result["ROOT"] = &domain.StepsResult{
		Lockfile: &domain.LockfileResult{Flake: "."},
		Build:    &domain.BuildResult{OutPaths: []string{"/nix/store/a", "/nix/store/b"}},
		Custom:   map[string]domain.CustomResult{"fmt": {}, "check": {}},
	}
	res.Result["dev"] = &domain.StepsResult{}

	rows := SummaryRows(res)
	want := [][]string{
		{"ROOT", "lockfile,build,check,fmt", "2"},
		{"dev", "-", "0"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Setenv(EnvResultsDB, "")

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := repo.NewRunRecord(uuid.New(), testFlake, []domain.System{"x86_64-linux"}, nil,
		errors.New("boom"), started, started.Add(1500*time.Millisecond))
	history := &memHistory{records: []*repo.RunRecord{rec}}

	var dsn string
	open := func(_ context.Context, d string) (HistoryReader, func(), error) {
		dsn = d
		return history, func() {}, nil
	}

	run := func(jsonMode bool, args ...string) (string, error) {
		var stdout bytes.Buffer
		cmd := NewHistoryCmd(open, func() *Output { return NewOutputTo(&stdout, io.Discard, jsonMode) })
		cmd.SetArgs(args)
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		err := cmd.Execute()
		return stdout.String(), err
	}

	t.Run("missing dsn", func(t *testing.T) {
		_, err := run(false, "list")
		if !errors.Is(err, exitcode.ErrUsage) {
			t.Fatalf("expected usage error, got %v", err)
		}
	})

	t.Run("list table", func(t *testing.T) {
		out, err := run(false, "list", "--results-db", "postgres://db/ci")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if dsn != "postgres://db/ci" {
			t.Errorf("dsn = %q", dsn)
		}
		for _, want := range []string{"STATUS", rec.ID.String(), "failed", "1.5s"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("show json", func(t *testing.T) {
		out, err := run(true, "show", rec.ID.String(), "--results-db", "postgres://db/ci")
		if err != nil {
			t.Fatalf("show: %v", err)
		}
		if !strings.Contains(out, `"error": "boom"`) || strings.Contains(out, `"result"`) {
			t.Errorf("unexpected JSON:\n%s", out)
		}
	})

	t.Run("show bad id", func(t *testing.T) {
		_, err := run(false, "show", "nope", "--results-db", "postgres://db/ci")
		if !errors.Is(err, exitcode.ErrUsage) {
			t.Fatalf("expected usage error, got %v", err)
		}
	})
}
