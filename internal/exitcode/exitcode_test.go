package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shaiso/flakeci/internal/health"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: Success},
		{name: "health gate", err: &health.GateError{}, want: HealthGateFailure},
		{name: "wrapped health gate", err: fmt.Errorf("preflight: %w", health.ErrHealthGate), want: HealthGateFailure},
		{name: "usage", err: fmt.Errorf("%w: unknown flag --x", ErrUsage), want: UsageError},
		{name: "other", err: errors.New("step build failed"), want: GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	if Description(HealthGateFailure) != "Health check failed" {
		t.Errorf("unexpected description: %s", Description(HealthGateFailure))
	}
	if Description(42) != "Unknown error" {
		t.Errorf("unexpected description: %s", Description(42))
	}
}
