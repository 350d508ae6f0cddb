package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/flakeci/internal/domain"
)

// testRepo подключается к FLAKECI_TEST_DB_URL или пропускает тест.
func testRepo(t *testing.T) *RunRepo {
	t.Helper()

	dsn := os.Getenv("FLAKECI_TEST_DB_URL")
	if dsn == "" {
		t.Skip("FLAKECI_TEST_DB_URL is not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return NewRunRepo(pool)
}

func TestNewRunRecord(t *testing.T) {
	now := time.Now()
	res := domain.NewRunResult(".", []domain.System{"x86_64-linux"})

	rec := NewRunRecord(uuid.New(), ".", res.Systems, res, nil, now, now)
	if rec.Status != StatusPassed || rec.Result != res {
		t.Errorf("unexpected record: %+v", rec)
	}

	rec = NewRunRecord(uuid.New(), ".", res.Systems, res, errors.New("subflake b: boom"), now, now)
	if rec.Status != StatusFailed || rec.Result != nil || rec.Error != "subflake b: boom" {
		t.Errorf("failed run must not keep result: %+v", rec)
	}
}

func TestRunRepo_SaveAndGet(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	flake := domain.FlakeURL("github:me/proj-" + uuid.NewString())
	res := domain.NewRunResult(flake, []domain.System{"x86_64-linux"})
	res.Result["ROOT"] = &domain.StepsResult{Lockfile: &domain.LockfileResult{Flake: flake}}

	started := time.Now().UTC().Truncate(time.Millisecond)
	rec := NewRunRecord(uuid.New(), flake, res.Systems, res, nil, started, started.Add(time.Minute))
	if err := r.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := r.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Flake != flake || got.Status != StatusPassed {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Result == nil || got.Result.Result["ROOT"].Lockfile == nil {
		t.Errorf("result not persisted: %+v", got.Result)
	}

	list, err := r.List(ctx, RunFilter{Flake: flake})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != rec.ID {
		t.Errorf("unexpected list: %+v", list)
	}

	if err := r.Save(ctx, rec); !errors.Is(err, ErrDuplicateRun) {
		t.Errorf("expected ErrDuplicateRun on second save, got %v", err)
	}
}

func TestRunRepo_GetByID_NotFound(t *testing.T) {
	r := testRepo(t)

	_, err := r.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
