package steps

import (
	"fmt"
	"sync"

	"github.com/shaiso/flakeci/internal/domain"
)

// Kind — вид шага. По конфигурации subflake возвращает шаги этого вида.
type Kind interface {
	// Name возвращает имя вида.
	Name() string

	// Steps возвращает шаги вида для subflake (пусто, если вид выключен).
	Steps(sub *domain.Subflake) []Step
}

// Registry — реестр видов шагов.
//
// Порядок регистрации задаёт порядок шагов в Pipeline.
// Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
	order []string
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]Kind),
	}
}

// DefaultRegistry создаёт реестр со всеми видами шагов:
// lockfile, build, flake-check, custom.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(LockfileKind{})
	r.Register(BuildKind{})
	r.Register(FlakeCheckKind{})
	r.Register(CustomKind{})

	return r
}

// Register регистрирует вид шага в реестре.
// Если вид с таким именем уже существует, он будет перезаписан на прежнем месте.
func (r *Registry) Register(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[kind.Name()]; !exists {
		r.order = append(r.order, kind.Name())
	}
	r.kinds[kind.Name()] = kind
}

// Get возвращает вид шага по имени.
// Возвращает ErrStepNotFound, если вид не найден.
func (r *Registry) Get(name string) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kind, exists := r.kinds[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, name)
	}

	return kind, nil
}

// Has проверяет, зарегистрирован ли вид шага.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.kinds[name]
	return exists
}

// Names возвращает имена видов в порядке регистрации.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Count возвращает количество зарегистрированных видов.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.kinds)
}

// Unregister удаляет вид шага из реестра.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[name]; !exists {
		return
	}
	delete(r.kinds, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Plan строит Pipeline для subflake.
func (r *Registry) Plan(sub *domain.Subflake) *Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := &Pipeline{Subflake: sub.Name}
	for _, name := range r.order {
		p.Steps = append(p.Steps, r.kinds[name].Steps(sub)...)
	}
	return p
}
