package remote

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SelfEnv — переменная окружения с store path пакета ci.
const SelfEnv = "FLAKECI_SELF"

const storeDir = "/nix/store/"

// SelfStorePath возвращает store path пакета, из которого запущен ci
// (например, /nix/store/<hash>-flakeci-1.0).
func SelfStorePath() (string, error) {
	if p := os.Getenv(SelfEnv); p != "" {
		return StorePathOf(p)
	}

	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return StorePathOf(exe)
}

// StorePathOf возвращает store path верхнего уровня для пути внутри /nix/store.
func StorePathOf(path string) (string, error) {
	rest, ok := strings.CutPrefix(filepath.Clean(path), storeDir)
	if !ok || rest == "" {
		return "", fmt.Errorf("%w: %s (set %s)", ErrSelfNotInStore, path, SelfEnv)
	}
	name, _, _ := strings.Cut(rest, "/")
	return storeDir + name, nil
}
