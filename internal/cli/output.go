package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shaiso/flakeci/internal/domain"
)

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return NewOutputTo(os.Stdout, os.Stderr, jsonMode)
}

// NewOutputTo создаёт Output с явными потоками.
func NewOutputTo(w, errW io.Writer, jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	table(o.w, headers, rows)
}

func table(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Заголовки
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	// Разделитель
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	// Строки данных
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Summary выводит сводку прогона в stderr.
//
// stdout не используется: он может быть занят отчётом (--results -).
func (o *Output) Summary(res *domain.RunResult) {
	if res == nil || len(res.Result) == 0 {
		fmt.Fprintln(o.errW, "No subflakes were run")
		return
	}
	table(o.errW, []string{"SUBFLAKE", "STEPS", "OUT_PATHS"}, SummaryRows(res))
}

// SummaryRows строит строки сводки: subflake, выполненные шаги, число store paths.
func SummaryRows(res *domain.RunResult) [][]string {
	names := make([]string, 0, len(res.Result))
	for name := range res.Result {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		sr := res.Result[name]
		if sr == nil {
			rows = append(rows, []string{name, "-", "0"})
			continue
		}

		var steps []string
		if sr.Lockfile != nil {
			steps = append(steps, "lockfile")
		}
		outPaths := 0
		if sr.Build != nil {
			steps = append(steps, "build")
			outPaths = len(sr.Build.OutPaths)
		}
		if sr.FlakeCheck != nil {
			steps = append(steps, "flake-check")
		}
		custom := make([]string, 0, len(sr.Custom))
		for c := range sr.Custom {
			custom = append(custom, c)
		}
		sort.Strings(custom)
		steps = append(steps, custom...)

		list := "-"
		if len(steps) > 0 {
			list = strings.Join(steps, ",")
		}
		rows = append(rows, []string{name, list, strconv.Itoa(outPaths)})
	}
	return rows
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}
