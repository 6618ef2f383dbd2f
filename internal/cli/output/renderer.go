// Package output renders command results as styled text, markdown, JSON or
// YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/blogadmin/internal/connector"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
)

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   Mode
	styles *Styles
}

// NewRenderer creates a Renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a Renderer with an explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	styles := PlainStyles()
	if isTTY {
		styles = DefaultStyles()
	}
	return &Renderer{out: out, errOut: errOut, isTTY: isTTY, mode: mode, styles: styles}
}

// EffectiveMode resolves ModeAuto: text on a terminal, markdown otherwise.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Styles returns the styles of the renderer.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a header in the effective mode.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, text))
		return
	}
	style := r.styles.Header1
	if level > 1 {
		style = r.styles.Header2
	}
	r.Println(style.Render(text))
}

// Success writes a confirmation line to standard error.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Success.Render(msg))
}

// Warning writes a warning line to standard error.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("Warning: "+msg))
}

// Note writes a muted hint to standard error.
func (r *Renderer) Note(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Muted.Render(msg))
}

// Error writes err to standard error.
func (r *Renderer) Error(err error) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("Error: "+err.Error()))
}

// Value writes v as JSON or YAML. Other modes fall back to YAML, which
// reads well on a terminal.
func (r *Renderer) Value(v any) error {
	if r.EffectiveMode() == ModeJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Records writes a list of records. columns selects and orders the table
// columns; nil means every key.
func (r *Renderer) Records(columns []string, records []connector.Record) error {
	switch r.EffectiveMode() {
	case ModeJSON, ModeYAML:
		if records == nil {
			records = []connector.Record{}
		}
		return r.Value(records)
	}

	if len(records) == 0 {
		r.Println("(0 records)")
		return nil
	}
	if columns == nil {
		columns = Columns(records)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, rec := range records {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			row[i] = FormatValue(rec[col])
		}
		t.AppendRow(row)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.SetStyle(table.StyleLight)
		t.Render()
	}
	r.Printf("(%d records)\n", len(records))
	return nil
}

// Record writes a single record as key/value pairs.
func (r *Renderer) Record(rec connector.Record) error {
	switch r.EffectiveMode() {
	case ModeJSON, ModeYAML:
		return r.Value(rec)
	case ModeMarkdown:
		for _, key := range Columns([]connector.Record{rec}) {
			r.Println(FormatKeyValue(key, FormatValue(rec[key])))
		}
		return nil
	}
	for _, key := range Columns([]connector.Record{rec}) {
		r.Printf("  %s: %s\n", r.styles.Bold.Render(key), FormatValue(rec[key]))
	}
	return nil
}

// Options writes the choices of an option connector.
func (r *Renderer) Options(opts []connector.Option) error {
	switch r.EffectiveMode() {
	case ModeJSON, ModeYAML:
		if opts == nil {
			opts = []connector.Option{}
		}
		return r.Value(opts)
	}
	records := make([]connector.Record, len(opts))
	for i, o := range opts {
		records[i] = connector.Record{"value": o.Value, "label": o.Label}
	}
	return r.Records([]string{"value", "label"}, records)
}
