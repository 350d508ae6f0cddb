package mq

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/flakeci/internal/domain"
)

// RunPayload — payload событий run.started и run.finished.
type RunPayload struct {
	RunID      uuid.UUID       `json:"run_id"`
	Flake      domain.FlakeURL `json:"flake"`
	Systems    []domain.System `json:"systems,omitempty"`
	Status     string          `json:"status,omitempty"` // passed или failed
	DurationMs int64           `json:"duration_ms,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// SubflakePayload — payload событий subflake.*.
type SubflakePayload struct {
	RunID      uuid.UUID `json:"run_id"`
	Subflake   string    `json:"subflake"`
	Reason     string    `json:"reason,omitempty"` // для subflake.skipped
	Status     string    `json:"status,omitempty"` // для subflake.finished
	DurationMs int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// RunEvents публикует события одного прогона.
//
// Ошибки публикации логируются и не прерывают прогон.
type RunEvents struct {
	publisher *Publisher
	runID     uuid.UUID
	flake     domain.FlakeURL
	logger    *slog.Logger
}

// NewRunEvents создаёт RunEvents для прогона runID.
func NewRunEvents(publisher *Publisher, runID uuid.UUID, flake domain.FlakeURL, logger *slog.Logger) *RunEvents {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunEvents{publisher: publisher, runID: runID, flake: flake, logger: logger}
}

func (e *RunEvents) publish(ctx context.Context, t MessageType, payload any) {
	if err := e.publisher.Emit(ctx, t, payload); err != nil {
		e.logger.Warn("failed to publish event", "type", t, "error", err)
	}
}

func status(err error) (string, string) {
	if err != nil {
		return "failed", err.Error()
	}
	return "passed", ""
}

// RunStarted публикует run.started.
func (e *RunEvents) RunStarted(ctx context.Context, systems []domain.System) {
	e.publish(ctx, MessageTypeRunStarted, RunPayload{RunID: e.runID, Flake: e.flake, Systems: systems})
}

// SubflakeSkipped публикует subflake.skipped.
func (e *RunEvents) SubflakeSkipped(ctx context.Context, name, reason string) {
	e.publish(ctx, MessageTypeSubflakeSkipped, SubflakePayload{RunID: e.runID, Subflake: name, Reason: reason})
}

// SubflakeStarted публикует subflake.started.
func (e *RunEvents) SubflakeStarted(ctx context.Context, name string) {
	e.publish(ctx, MessageTypeSubflakeStarted, SubflakePayload{RunID: e.runID, Subflake: name})
}

// SubflakeFinished публикует subflake.finished.
func (e *RunEvents) SubflakeFinished(ctx context.Context, name string, d time.Duration, err error) {
	st, msg := status(err)
	e.publish(ctx, MessageTypeSubflakeFinished, SubflakePayload{
		RunID:      e.runID,
		Subflake:   name,
		Status:     st,
		DurationMs: d.Milliseconds(),
		Error:      msg,
	})
}

// StepFinished не публикуется: события шагов слишком частые.
func (e *RunEvents) StepFinished(context.Context, string, string, time.Duration, error) {}

// RunFinished публикует run.finished.
func (e *RunEvents) RunFinished(ctx context.Context, d time.Duration, err error) {
	st, msg := status(err)
	e.publish(ctx, MessageTypeRunFinished, RunPayload{
		RunID:      e.runID,
		Flake:      e.flake,
		Status:     st,
		DurationMs: d.Milliseconds(),
		Error:      msg,
	})
}
