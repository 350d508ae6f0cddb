package nix

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version — версия Nix.
type Version struct {
	Major int
	Minor int
	Patch int
}

var versionRe = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion разбирает вывод `nix --version`, например "nix (Nix) 2.18.1".
func ParseVersion(s string) (Version, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return Version{}, fmt.Errorf("%w: empty version string", ErrUnexpectedOutput)
	}

	m := versionRe.FindStringSubmatch(fields[len(fields)-1])
	if m == nil {
		return Version{}, fmt.Errorf("%w: cannot parse nix version %q", ErrUnexpectedOutput, s)
	}

	v := Version{}
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}
	return v, nil
}

// String возвращает версию в формате "2.18.1".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Semver возвращает версию в формате golang.org/x/mod/semver ("v2.18.1").
func (v Version) Semver() string {
	return "v" + v.String()
}

// GetVersion возвращает версию установленного Nix.
func GetVersion(ctx context.Context, cmd *Cmd) (Version, error) {
	out, err := cmd.Exec(ctx, cmd.Bin, "--version")
	if err != nil {
		return Version{}, fmt.Errorf("nix --version: %w", err)
	}
	return ParseVersion(string(out))
}

// Info — сведения об установке Nix, собираемые один раз перед прогоном.
type Info struct {
	Version Version
	Config  *Config
}

// GatherInfo собирает версию и конфигурацию Nix.
func GatherInfo(ctx context.Context, cmd *Cmd) (*Info, error) {
	version, err := GetVersion(ctx, cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := GetConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return &Info{Version: version, Config: cfg}, nil
}
