package remote

import "errors"

// Ошибки удалённого запуска.
var (
	// ErrRemoteDispatch — удалённый прогон не удался.
	ErrRemoteDispatch = errors.New("remote dispatch failed")

	// ErrSelfNotInStore — исполняемый файл ci не лежит в /nix/store.
	ErrSelfNotInStore = errors.New("ci executable is not in the nix store")
)

// DispatchError — ошибка одного из этапов удалённого запуска.
type DispatchError struct {
	Host  string // удалённый store
	Stage string // metadata, self, copy, run, decode
	Err   error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *DispatchError) Error() string {
	return "remote " + e.Host + ": " + e.Stage + ": " + e.Err.Error()
}

// Unwrap возвращает ErrRemoteDispatch и базовую ошибку.
func (e *DispatchError) Unwrap() []error {
	return []error{ErrRemoteDispatch, e.Err}
}
