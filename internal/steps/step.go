package steps

import (
	"context"
	"time"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/nix"
)

// Step — интерфейс для шагов subflake.
//
// Каждый вид шага (lockfile, build, flake-check, custom) реализует этот интерфейс.
type Step interface {
	// Name возвращает имя шага (ключ в StepsResult или имя custom-шага).
	Name() string

	// Execute выполняет шаг и возвращает результат.
	Execute(ctx context.Context, req *Request) (*Outcome, error)
}

// StepObserver получает уведомления о завершении шагов.
type StepObserver interface {
	StepFinished(ctx context.Context, subflake, step string, d time.Duration, err error)
}

// Request — входные данные для выполнения шагов одного subflake.
type Request struct {
	// Subflake — выполняемый subflake.
	Subflake *domain.Subflake

	// Flake — корневой flake без атрибутного пути.
	Flake domain.FlakeURL

	// Systems — платформы прогона.
	Systems []domain.System

	// Args — аргументы шагов из командной строки.
	Args domain.StepsArgs

	// Nix — исполнитель команд nix.
	Nix *nix.Cmd

	// Observer — необязательный получатель событий шагов.
	Observer StepObserver
}

// URL возвращает ссылку на flake subflake (с учётом Dir).
func (r *Request) URL() domain.FlakeURL {
	return r.Flake.SubDir(r.Subflake.Dir)
}

// OverrideArgs возвращает --override-input для overrideInputs subflake.
func (r *Request) OverrideArgs(prefix string) []string {
	return nix.OverrideInputArgs(prefix, r.Subflake.OverrideInputs)
}

// Outcome — результат выполнения шага.
type Outcome struct {
	// Result — *domain.LockfileResult, *domain.BuildResult,
	// *domain.FlakeCheckResult или *domain.CustomResult.
	// nil — шаг пропущен (несовместимая платформа).
	Result any
}

// NewOutcome создаёт Outcome с результатом.
func NewOutcome(result any) *Outcome {
	return &Outcome{Result: result}
}

// Skipped возвращает Outcome пропущенного шага.
func Skipped() *Outcome {
	return &Outcome{}
}
