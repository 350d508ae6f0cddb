package systems

import (
	"strings"

	"github.com/shaiso/flakeci/internal/domain"
)

const nixSystemsPrefix = "github:nix-systems/"

// known — списки из github:nix-systems, не требующие вычисления.
var known = map[string][]domain.System{
	"default":        {"aarch64-darwin", "aarch64-linux", "x86_64-darwin", "x86_64-linux"},
	"default-linux":  {"aarch64-linux", "x86_64-linux"},
	"default-darwin": {"aarch64-darwin", "x86_64-darwin"},
	"aarch64-darwin": {"aarch64-darwin"},
	"aarch64-linux":  {"aarch64-linux"},
	"x86_64-darwin":  {"x86_64-darwin"},
	"x86_64-linux":   {"x86_64-linux"},
}

// lookupKnown возвращает список для ссылки вида github:nix-systems/<name>.
func lookupKnown(ref domain.FlakeURL) ([]domain.System, bool) {
	name, ok := strings.CutPrefix(ref.String(), nixSystemsPrefix)
	if !ok {
		return nil, false
	}
	systems, ok := known[name]
	if !ok {
		return nil, false
	}
	return append([]domain.System(nil), systems...), true
}

// FlakeRef возвращает ссылку github:nix-systems/<system> для одной платформы.
func FlakeRef(system domain.System) domain.FlakeURL {
	return domain.FlakeURL(nixSystemsPrefix + system.String())
}
