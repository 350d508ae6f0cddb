package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/mq"
	"github.com/shaiso/flakeci/internal/orchestrator"
	"github.com/shaiso/flakeci/internal/repo"
	"github.com/shaiso/flakeci/internal/telemetry"
)

// Options — необязательные приёмники прогона.
type Options struct {
	// ResultsDB — DSN Postgres для истории прогонов.
	ResultsDB string

	// EventsURL — URL RabbitMQ для событий прогона.
	EventsURL string

	// MetricsFile — файл для метрик в текстовом формате Prometheus.
	MetricsFile string
}

// HistoryStore сохраняет запись о прогоне.
type HistoryStore interface {
	Save(ctx context.Context, rec *repo.RunRecord) error
}

// sinks — приёмники одного прогона: метрики, события, история.
//
// Отказ приёмника после открытия не прерывает прогон.
type sinks struct {
	runID       uuid.UUID
	metrics     *telemetry.Metrics
	metricsFile string
	events      *mq.RunEvents
	history     HistoryStore
	started     bool
	closers     []func()
	logger      *slog.Logger
}

// openSinks открывает приёмники, заданные в opts.
func openSinks(ctx context.Context, runID uuid.UUID, flake domain.FlakeURL, opts Options, logger *slog.Logger) (*sinks, error) {
	s := &sinks{
		runID:       runID,
		metrics:     telemetry.NewMetrics(),
		metricsFile: opts.MetricsFile,
		logger:      logger,
	}

	if opts.EventsURL != "" {
		conn, err := mq.NewConnection(opts.EventsURL, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect to events broker: %w", err)
		}
		s.closers = append(s.closers, func() { conn.Close() })

		if err := mq.SetupTopology(conn); err != nil {
			s.Close()
			return nil, fmt.Errorf("setup events topology: %w", err)
		}
		s.events = mq.NewRunEvents(mq.NewPublisher(conn, logger), runID, flake, logger)
	}

	if opts.ResultsDB != "" {
		pool, err := repo.NewPool(ctx, opts.ResultsDB)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)

		if err := repo.EnsureSchema(ctx, pool); err != nil {
			s.Close()
			return nil, err
		}
		s.history = repo.NewRunRepo(pool)
	}

	return s, nil
}

// observers возвращает наблюдателей прогона.
func (s *sinks) observers() orchestrator.Observers {
	obs := orchestrator.Observers{s.metrics}
	if s.events != nil {
		obs = append(obs, s.events)
	}
	return obs
}

// runStarted публикует run.started один раз за прогон.
func (s *sinks) runStarted(ctx context.Context, systems []domain.System) {
	if s.started {
		return
	}
	s.started = true
	if s.events != nil {
		s.events.RunStarted(ctx, systems)
	}
}

// runFinished сообщает об окончании прогона, не дошедшего до оркестратора.
func (s *sinks) runFinished(ctx context.Context, d time.Duration, err error) {
	s.runStarted(ctx, nil)
	s.observers().RunFinished(ctx, d, err)
}

// record сохраняет историю и метрики.
func (s *sinks) record(ctx context.Context, rec *repo.RunRecord) {
	if s.history != nil {
		if err := s.history.Save(ctx, rec); err != nil {
			s.logger.Warn("failed to save run history", "error", err)
		}
	}
	if s.metricsFile != "" {
		if err := s.metrics.WriteTextfile(s.metricsFile); err != nil {
			s.logger.Warn("failed to write metrics", "path", s.metricsFile, "error", err)
		}
	}
}

// Close закрывает соединения в обратном порядке.
func (s *sinks) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
