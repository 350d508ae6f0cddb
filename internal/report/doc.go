// Package report сохраняет итог прогона в JSON.
package report
