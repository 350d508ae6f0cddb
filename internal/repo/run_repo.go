package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/flakeci/internal/domain"
)

// Статусы прогона в истории.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// RunRecord — запись истории прогонов.
type RunRecord struct {
	ID         uuid.UUID
	Flake      domain.FlakeURL
	Systems    []domain.System
	Status     string
	Result     *domain.RunResult // nil для упавших прогонов
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunRecord создаёт запись по итогу прогона.
func NewRunRecord(id uuid.UUID, flake domain.FlakeURL, systems []domain.System, res *domain.RunResult, runErr error, started, finished time.Time) *RunRecord {
	rec := &RunRecord{
		ID:         id,
		Flake:      flake,
		Systems:    systems,
		Status:     StatusPassed,
		Result:     res,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if runErr != nil {
		rec.Status = StatusFailed
		rec.Error = runErr.Error()
		rec.Result = nil
	}
	return rec
}

// RunFilter — фильтр для списка прогонов.
type RunFilter struct {
	Flake domain.FlakeURL
	Limit int
}

// RunRepo — репозиторий истории прогонов.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Save сохраняет запись.
func (r *RunRepo) Save(ctx context.Context, rec *RunRecord) error {
	var resultJSON []byte
	if rec.Result != nil {
		var err error
		resultJSON, err = json.Marshal(rec.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}

	query := `
		INSERT INTO ci_runs (id, flake, systems, status, result, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Flake.String(),
		systemStrings(rec.Systems),
		rec.Status,
		resultJSON,
		nullString(rec.Error),
		rec.StartedAt,
		rec.FinishedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, rec.ID)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID возвращает запись по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	query := `
		SELECT id, flake, systems, status, result, error, started_at, finished_at
		FROM ci_runs
		WHERE id = $1
	`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// List возвращает последние прогоны, новые первыми.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]RunRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, flake, systems, status, result, error, started_at, finished_at
		FROM ci_runs
		WHERE ($1::text IS NULL OR flake = $1)
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, nullString(filter.Flake.String()), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *rec)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*RunRecord, error) {
	var (
		rec        RunRecord
		flake      string
		systems    []string
		resultJSON []byte
		errText    *string
	)

	err := row.Scan(&rec.ID, &flake, &systems, &rec.Status, &resultJSON, &errText, &rec.StartedAt, &rec.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	rec.Flake = domain.FlakeURL(flake)
	for _, s := range systems {
		rec.Systems = append(rec.Systems, domain.System(s))
	}
	if errText != nil {
		rec.Error = *errText
	}
	if len(resultJSON) > 0 {
		var res domain.RunResult
		if err := json.Unmarshal(resultJSON, &res); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, rec.ID, err)
		}
		rec.Result = &res
	}
	return &rec, nil
}

func systemStrings(systems []domain.System) []string {
	out := make([]string, len(systems))
	for i, s := range systems {
		out[i] = s.String()
	}
	return out
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
