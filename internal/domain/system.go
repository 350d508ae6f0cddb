package domain

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// System — идентификатор целевой платформы (например, "x86_64-linux").
//
// Внутренняя структура не интерпретируется: сравнение — точное совпадение строк.
type System string

// String возвращает строковое представление System.
func (s System) String() string {
	return string(s)
}

// ContainsSystem проверяет, входит ли system в список.
func ContainsSystem(systems []System, system System) bool {
	for _, s := range systems {
		if s == system {
			return true
		}
	}
	return false
}

// FlakeURL — ссылка на flake, возможно с атрибутным путём после '#'.
//
// Примеры: ".", "github:srid/haskell-flake", ".#default.dev".
type FlakeURL string

// DefaultFlakeURL — flake текущей директории.
const DefaultFlakeURL FlakeURL = "."

// String возвращает строковое представление FlakeURL.
func (u FlakeURL) String() string {
	return string(u)
}

// Split разделяет ссылку на flake без атрибута и атрибутный путь.
//
//	"github:a/b#default.dev" → ("github:a/b", ["default", "dev"])
//	"."                      → (".", nil)
func (u FlakeURL) Split() (FlakeURL, []string) {
	s := string(u)
	idx := strings.Index(s, "#")
	if idx < 0 {
		return u, nil
	}

	base := FlakeURL(s[:idx])
	attr := s[idx+1:]
	if attr == "" {
		return base, nil
	}

	var parts []string
	for _, p := range strings.Split(attr, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return base, parts
}

// WithoutAttr возвращает ссылку без атрибутного пути.
func (u FlakeURL) WithoutAttr() FlakeURL {
	base, _ := u.Split()
	return base
}

// WithAttr добавляет атрибут к ссылке: "github:a/b" + "om" → "github:a/b#om".
func (u FlakeURL) WithAttr(attr string) FlakeURL {
	return FlakeURL(string(u.WithoutAttr()) + "#" + attr)
}

// IsLocalPath возвращает true для ссылок на локальную директорию.
func (u FlakeURL) IsLocalPath() bool {
	s := string(u.WithoutAttr())
	return strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") || strings.HasPrefix(s, "path:")
}

// LocalPath возвращает путь в файловой системе для локальной ссылки.
func (u FlakeURL) LocalPath() (string, bool) {
	if !u.IsLocalPath() {
		return "", false
	}
	s := string(u.WithoutAttr())
	s = strings.TrimPrefix(s, "path:")
	if idx := strings.Index(s, "?"); idx >= 0 {
		s = s[:idx]
	}
	return s, true
}

// SubDir возвращает ссылку на flake в поддиректории.
//
// Для локальных путей директория присоединяется к пути,
// для остальных ссылок добавляется параметр ?dir=.
func (u FlakeURL) SubDir(dir string) FlakeURL {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return u.WithoutAttr()
	}

	base := string(u.WithoutAttr())
	if u.IsLocalPath() && !strings.Contains(base, "?") {
		prefix := ""
		if strings.HasPrefix(base, "path:") {
			prefix = "path:"
			base = strings.TrimPrefix(base, "path:")
		}
		joined := path.Join(base, dir)
		if strings.HasPrefix(base, "./") || base == "." {
			joined = "./" + strings.TrimPrefix(joined, "./")
		}
		return FlakeURL(prefix + joined)
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return FlakeURL(base + sep + "dir=" + url.QueryEscape(dir))
}

// ErrInvalidStoreURI — строка не является поддерживаемым URI хранилища.
var ErrInvalidStoreURI = errors.New("invalid store URI")

// StoreURI — адрес удалённого Nix store, на котором выполняется прогон.
//
// Поддерживаются схемы ssh:// и ssh-ng://.
type StoreURI struct {
	Scheme string
	User   string
	Host   string
}

// ParseStoreURI парсит строку вида "ssh-ng://user@host".
func ParseStoreURI(s string) (StoreURI, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return StoreURI{}, fmt.Errorf("%w: %q: %v", ErrInvalidStoreURI, s, err)
	}

	switch u.Scheme {
	case "ssh", "ssh-ng":
	default:
		return StoreURI{}, fmt.Errorf("%w: %q: unsupported scheme %q", ErrInvalidStoreURI, s, u.Scheme)
	}

	if u.Host == "" {
		return StoreURI{}, fmt.Errorf("%w: %q: missing host", ErrInvalidStoreURI, s)
	}

	return StoreURI{
		Scheme: u.Scheme,
		User:   u.User.Username(),
		Host:   u.Host,
	}, nil
}

// SSHTarget возвращает адрес для ssh: "user@host" или "host".
func (s StoreURI) SSHTarget() string {
	if s.User == "" {
		return s.Host
	}
	return s.User + "@" + s.Host
}

// String возвращает URI в исходном формате.
func (s StoreURI) String() string {
	return s.Scheme + "://" + s.SSHTarget()
}
