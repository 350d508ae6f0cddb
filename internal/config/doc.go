// Package config загружает конфигурацию проекта (атрибут flake `om`)
// и проецирует из неё план CI.
//
// Источники, по порядку:
//   - `nix eval --json <flake>#om`
//   - om.yaml / om.json в корне локального flake
//
// Структура конфигурации:
//
//	om:
//	  ci:
//	    default:          # имя конфигурации (первый атрибут после '#')
//	      ROOT:           # subflake
//	        dir: .
//	        systems: [x86_64-linux]
//	        steps: {...}
//	  health:
//	    default:
//	      nix-version:
//	        min-required: "2.16.0"
//
// Ссылка `.#default.dev` выбирает конфигурацию ci.default и
// ограничивает прогон subflake "dev".
package config
