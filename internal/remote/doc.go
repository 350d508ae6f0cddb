// Package remote выполняет прогон на удалённом Nix store.
//
// Dispatcher копирует исходники flake и сам ci на удалённую машину
// (`nix copy --to`), запускает там `ci run` по ssh и читает отчёт
// из stdout удалённого процесса. Удалённый процесс получает те же
// аргументы без --on, поэтому выполняется локально на своей стороне.
package remote
