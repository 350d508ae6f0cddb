package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shaiso/flakeci/internal/config"
	"github.com/shaiso/flakeci/internal/domain"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name    string
		path    []string
		want    Selector
		wantErr error
	}{
		{name: "empty", path: nil, want: Selector{}},
		{name: "subflake", path: []string{"dev"}, want: Selector{Subflake: "dev"}},
		{name: "subflake and step", path: []string{"dev", "build"}, want: Selector{Subflake: "dev", Step: "build"}},
		{name: "too long", path: []string{"a", "b", "c"}, wantErr: ErrInvalidSelector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelector(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSelector_Matches(t *testing.T) {
	all := Selector{}
	if !all.Matches("a") || !all.Matches("b") {
		t.Error("zero selector should match every subflake")
	}
	if !all.IsZero() {
		t.Error("zero selector should report IsZero")
	}

	dev := Selector{Subflake: "dev"}
	if !dev.Matches("dev") {
		t.Error("selector should match its own subflake")
	}
	if dev.Matches("docs") {
		t.Error("selector should not match other subflakes")
	}
}

func TestValidate_SubflakeNames(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "empty", key: "", wantErr: ErrEmptySubflakeName},
		{name: "dot", key: "a.b", wantErr: ErrInvalidSubflakeName},
		{name: "hash", key: "a#b", wantErr: ErrInvalidSubflakeName},
		{name: "valid", key: "extra-tests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &Plan{Subflakes: domain.SubflakesConfig{tt.key: domain.DefaultSubflake(tt.key)}}
			err := Validate(plan)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_Dir(t *testing.T) {
	tests := []struct {
		dir     string
		wantErr bool
	}{
		{dir: "."},
		{dir: "dev"},
		{dir: "nested/dir"},
		{dir: "a/../b"},
		{dir: "/abs", wantErr: true},
		{dir: "..", wantErr: true},
		{dir: "../sibling", wantErr: true},
		{dir: "a/../../b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			sub := domain.DefaultSubflake("x")
			sub.Dir = tt.dir
			err := ValidateSubflake("x", sub)
			if tt.wantErr && !errors.Is(err, ErrInvalidDir) {
				t.Errorf("expected ErrInvalidDir, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_CustomSteps(t *testing.T) {
	tests := []struct {
		name    string
		step    string
		cfg     domain.CustomStepConfig
		wantErr error
	}{
		{name: "app", step: "fmt", cfg: domain.CustomStepConfig{Type: domain.CustomStepApp}},
		{name: "devshell", step: "test", cfg: domain.CustomStepConfig{Type: domain.CustomStepDevShell, Command: []string{"just", "test"}}},
		{name: "devshell without command", step: "test", cfg: domain.CustomStepConfig{Type: domain.CustomStepDevShell}, wantErr: ErrEmptyCommand},
		{name: "empty type", step: "x", cfg: domain.CustomStepConfig{}, wantErr: ErrUnknownStepType},
		{name: "unknown type", step: "x", cfg: domain.CustomStepConfig{Type: "docker"}, wantErr: ErrUnknownStepType},
		{name: "shadows builtin", step: "build", cfg: domain.CustomStepConfig{Type: domain.CustomStepApp}, wantErr: ErrDuplicateStepName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := domain.DefaultSubflake("ROOT")
			sub.Steps.Custom = map[string]domain.CustomStepConfig{tt.step: tt.cfg}

			err := ValidateSubflake("ROOT", sub)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStepNames(t *testing.T) {
	sub := domain.DefaultSubflake("ROOT")
	sub.Steps.FlakeCheck.Enable = true
	sub.Steps.Custom = map[string]domain.CustomStepConfig{
		"zz":  {Type: domain.CustomStepApp},
		"fmt": {Type: domain.CustomStepApp},
	}

	got := StepNames(sub)
	want := []string{"lockfile", "build", "flake-check", "fmt", "zz"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNewPlan(t *testing.T) {
	proj := &config.Projection{
		Flake: "github:a/b",
		Subflakes: domain.SubflakesConfig{
			"ROOT": domain.DefaultSubflake("ROOT"),
			"dev":  domain.DefaultSubflake("dev"),
		},
		Selector: []string{"dev", "build"},
	}

	plan, err := NewPlan(proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Selector != (Selector{Subflake: "dev", Step: "build"}) {
		t.Errorf("unexpected selector: %+v", plan.Selector)
	}
	if plan.Flake != "github:a/b" {
		t.Errorf("unexpected flake: %s", plan.Flake)
	}
}

func TestNewPlan_UnknownStep(t *testing.T) {
	proj := &config.Projection{
		Subflakes: domain.SubflakesConfig{"dev": domain.DefaultSubflake("dev")},
		Selector:  []string{"dev", "flake-check"},
	}

	_, err := NewPlan(proj)
	if !errors.Is(err, ErrUnknownStep) {
		t.Errorf("expected ErrUnknownStep, got %v", err)
	}
}

func TestNewPlan_UnknownSubflakeIsNotAnError(t *testing.T) {
	proj := &config.Projection{
		Subflakes: domain.SubflakesConfig{"dev": domain.DefaultSubflake("dev")},
		Selector:  []string{"missing", "build"},
	}

	plan, err := NewPlan(proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Selector.Matches("dev") {
		t.Error("selector should not match dev")
	}
}

func TestNewPlan_NilSubflakes(t *testing.T) {
	plan, err := NewPlan(&config.Projection{Flake: "."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Subflakes == nil {
		t.Error("expected non-nil subflakes")
	}
}
