package nix

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shaiso/flakeci/internal/domain"
)

// missingAttrMarker — фрагмент stderr nix при отсутствии атрибута.
const missingAttrMarker = "does not provide attribute"

// EvalJSON вычисляет атрибут flake (`nix eval --json <url>`) и декодирует в v.
//
// Возвращает ErrMissingAttribute, если flake не содержит атрибут.
func EvalJSON(ctx context.Context, cmd *Cmd, url domain.FlakeURL, v any) error {
	err := cmd.RunJSON(ctx, v, "eval", "--json", url.String())
	if err == nil {
		return nil
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && isMissingAttribute(cmdErr.Stderr) {
		return fmt.Errorf("%w: %s", ErrMissingAttribute, url)
	}
	return err
}

func isMissingAttribute(stderr string) bool {
	return strings.Contains(stderr, missingAttrMarker)
}

// EvalExprJSON вычисляет Nix-выражение (`nix eval --impure --json --expr`).
func EvalExprJSON(ctx context.Context, cmd *Cmd, expr string, v any) error {
	return cmd.RunJSON(ctx, v, "eval", "--impure", "--json", "--expr", expr)
}

// FlakeMetadata — выборка из `nix flake metadata --json`.
type FlakeMetadata struct {
	// Path — store path исходников flake.
	Path string `json:"path"`

	// URL — разрешённый URL flake.
	URL string `json:"url"`
}

// GetFlakeMetadata возвращает метаданные flake.
func GetFlakeMetadata(ctx context.Context, cmd *Cmd, url domain.FlakeURL) (*FlakeMetadata, error) {
	var meta FlakeMetadata
	if err := cmd.RunJSON(ctx, &meta, "flake", "metadata", "--json", url.WithoutAttr().String()); err != nil {
		return nil, err
	}
	if meta.Path == "" {
		return nil, fmt.Errorf("%w: flake metadata for %s has no path", ErrUnexpectedOutput, url)
	}
	return &meta, nil
}

// Build выполняет `nix build --no-link --print-out-paths` и возвращает store paths.
func Build(ctx context.Context, cmd *Cmd, args ...string) ([]string, error) {
	full := append([]string{"build", "--no-link", "--print-out-paths"}, args...)
	out, err := cmd.Run(ctx, full...)
	if err != nil {
		return nil, err
	}
	return SplitLines(string(out)), nil
}

// Copy копирует store paths на удалённый store (`nix copy --to`).
func Copy(ctx context.Context, cmd *Cmd, to domain.StoreURI, paths ...string) error {
	args := append([]string{"copy", "--to", to.String()}, paths...)
	_, err := cmd.Run(ctx, args...)
	return err
}

// Requisites возвращает замыкание зависимостей (`nix-store --query --requisites`).
func Requisites(ctx context.Context, cmd *Cmd, paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	args := append([]string{"--query", "--requisites"}, paths...)
	out, err := cmd.Exec(ctx, "nix-store", args...)
	if err != nil {
		return nil, err
	}
	return SortedUnique(SplitLines(string(out))), nil
}

// SplitLines разбивает вывод на непустые строки.
func SplitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// SortedUnique возвращает отсортированную копию без повторов.
func SortedUnique(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	sort.Strings(out)
	return out
}

// OverrideInputArgs превращает overrideInputs в аргументы --override-input.
//
// prefix добавляется к имени input (например, "flake/" для devour-flake).
func OverrideInputArgs(prefix string, inputs map[string]domain.FlakeURL) []string {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]string, 0, len(names)*3)
	for _, name := range names {
		args = append(args, "--override-input", prefix+name, inputs[name].String())
	}
	return args
}
