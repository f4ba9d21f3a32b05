// Package output prints invocation results for people and for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"trip-planner/internal/agent"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	titleColor   = color.New(color.FgCyan, color.Bold)
	headerColor  = color.New(color.FgWhite, color.Bold)
	faintColor   = color.New(color.Faint)
)

// ParseFormat accepts text, json or yaml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q: use text, json or yaml", s)
	}
}

func Success(format string, a ...interface{}) {
	successColor.Fprintf(os.Stderr, "✓ "+format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	infoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warn(format string, a ...interface{}) {
	warnColor.Fprintf(os.Stderr, "⚠ "+format+"\n", a...)
}

// Renderer writes one result in the chosen format.
type Renderer struct {
	w      io.Writer
	format Format
}

func NewRenderer(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format}
}

func (r *Renderer) Format() Format {
	return r.format
}

// Render writes an invocation result.
func (r *Renderer) Render(result map[string]interface{}) error {
	if r.format == FormatText {
		return r.text(result)
	}
	return r.Encode(result)
}

// Encode writes v as YAML when the format is yaml and as indented JSON
// otherwise.
func (r *Renderer) Encode(v interface{}) error {
	if r.format == FormatYAML {
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) text(result map[string]interface{}) error {
	if msg, failed := agent.ErrorOf(result); failed {
		errorColor.Fprintf(r.w, "✗ %v\n", msg)
		return nil
	}

	if plan, ok := result["best_trip_recommendation"].(string); ok {
		successColor.Fprintln(r.w, "Trip plan")
		fmt.Fprintln(r.w, strings.TrimSpace(plan))

		rawContext, _ := result["raw_context"].(map[string]interface{})
		for _, table := range agent.ExtractTables(rawContext["cortex_agent_response"]) {
			fmt.Fprintln(r.w)
			NewTable(table).Render(r.w)
		}
		if info, ok := rawContext["wiki_destination_info"].(map[string]interface{}); ok {
			fmt.Fprintln(r.w)
			r.destinations(info)
		}
		return nil
	}

	if _, ok := result["destinations"]; ok {
		r.destinations(result)
		return nil
	}

	return r.Encode(result)
}

func (r *Renderer) destinations(info map[string]interface{}) {
	if msg, failed := agent.ErrorOf(info); failed {
		warnColor.Fprintf(r.w, "⚠ Destination info unavailable: %v\n", msg)
		return
	}

	summaries, _ := info["summaries"].([]interface{})
	if len(summaries) == 0 {
		faintColor.Fprintln(r.w, "No destinations found.")
	}
	for _, s := range summaries {
		summary, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		title := fmt.Sprint(summary["title"])
		if msg, failed := agent.ErrorOf(summary); failed {
			warnColor.Fprintf(r.w, "⚠ %s: %v\n", title, msg)
			continue
		}
		titleColor.Fprintln(r.w, title)
		if d, ok := summary["description"].(string); ok && d != "" {
			faintColor.Fprintln(r.w, d)
		}
		if e, ok := summary["extract"].(string); ok && e != "" {
			fmt.Fprintln(r.w, e)
		}
		if u, ok := summary["page_url"].(string); ok && u != "" {
			infoColor.Fprintln(r.w, u)
		}
		fmt.Fprintln(r.w)
	}

	if text, ok := info["travel_summary"].(string); ok && text != "" {
		successColor.Fprintln(r.w, "Travel summary")
		fmt.Fprintln(r.w, strings.TrimSpace(text))
	}
}

// Table renders an agent result set with aligned columns.
type Table struct {
	title   string
	headers []string
	rows    [][]string
}

// NewTextTable builds a table from preformatted cells.
func NewTextTable(title string, headers []string, rows [][]string) *Table {
	return &Table{title: title, headers: headers, rows: rows}
}

func NewTable(t agent.Table) *Table {
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range cells {
			if i < len(row) && row[i] != nil {
				cells[i] = fmt.Sprint(row[i])
			}
		}
		rows = append(rows, cells)
	}
	return &Table{title: t.Title, headers: t.Columns, rows: rows}
}

func (t *Table) Render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len([]rune(header))
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	if t.title != "" {
		titleColor.Fprintln(w, t.title)
	}
	for i, header := range t.headers {
		headerColor.Fprint(w, pad(header, widths[i])+"  ")
	}
	fmt.Fprintln(w)
	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(w)
	for _, row := range t.rows {
		for i, cell := range row {
			fmt.Fprint(w, pad(cell, widths[i])+"  ")
		}
		fmt.Fprintln(w)
	}
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
