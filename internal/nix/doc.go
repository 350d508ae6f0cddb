// Package nix — тонкий слой над командой nix.
//
// Включает:
//   - runner.go  — запуск внешних процессов (Runner, ExecRunner)
//   - cmd.go     — Cmd: запуск nix с общими флагами, JSON-вывод
//   - config.go  — `nix config show --json`, текущая платформа
//   - info.go    — версия Nix и сбор NixInfo
//   - flake.go   — eval, flake metadata, build, copy
//
// Все вызовы принимают context.Context; прогресс nix (stderr)
// транслируется оператору, stdout разбирается вызывающим кодом.
package nix
