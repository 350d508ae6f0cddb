package orchestrator

import (
	"context"
	"time"
)

// Причины пропуска subflake.
const (
	SkipDeselected   = "deselected"
	SkipIncompatible = "incompatible"
)

// Observer получает события прогона (метрики, публикация событий).
//
// Вызовы синхронные и идут в порядке выполнения.
type Observer interface {
	SubflakeSkipped(ctx context.Context, name, reason string)
	SubflakeStarted(ctx context.Context, name string)
	SubflakeFinished(ctx context.Context, name string, d time.Duration, err error)
	StepFinished(ctx context.Context, subflake, step string, d time.Duration, err error)
	RunFinished(ctx context.Context, d time.Duration, err error)
}

// Observers рассылает события нескольким Observer.
type Observers []Observer

// SubflakeSkipped реализует Observer.
func (obs Observers) SubflakeSkipped(ctx context.Context, name, reason string) {
	for _, o := range obs {
		o.SubflakeSkipped(ctx, name, reason)
	}
}

// SubflakeStarted реализует Observer.
func (obs Observers) SubflakeStarted(ctx context.Context, name string) {
	for _, o := range obs {
		o.SubflakeStarted(ctx, name)
	}
}

// SubflakeFinished реализует Observer.
func (obs Observers) SubflakeFinished(ctx context.Context, name string, d time.Duration, err error) {
	for _, o := range obs {
		o.SubflakeFinished(ctx, name, d, err)
	}
}

// StepFinished реализует Observer.
func (obs Observers) StepFinished(ctx context.Context, subflake, step string, d time.Duration, err error) {
	for _, o := range obs {
		o.StepFinished(ctx, subflake, step, d, err)
	}
}

// RunFinished реализует Observer.
func (obs Observers) RunFinished(ctx context.Context, d time.Duration, err error) {
	for _, o := range obs {
		o.RunFinished(ctx, d, err)
	}
}
