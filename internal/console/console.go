package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Glyphs printed as terminal markers.
const (
	PassGlyph = "✓"
	FailGlyph = "✗"
	SkipLabel = "skipped"
)

// Decoration names the visual role of a piece of output.
type Decoration string

const (
	StepMajor Decoration = "step-maj"
	StepMinor Decoration = "step-min"
	ItemMajor Decoration = "item-maj"
	ItemMinor Decoration = "item-min"
	Pass      Decoration = "pass"
	Fail      Decoration = "fail"
	Skip      Decoration = "skip"
	Quote     Decoration = "quote"
)

var indents = map[Decoration]string{
	StepMajor: "",
	StepMinor: "  ",
	ItemMajor: "    ",
	ItemMinor: "      ",
}

var colors = map[Decoration]text.Colors{
	StepMajor: {text.Bold},
	StepMinor: {text.FgCyan},
	ItemMajor: {text.Bold},
	Pass:      {text.FgGreen},
	Fail:      {text.FgRed},
	Skip:      {text.FgYellow},
	Quote:     {text.Faint},
}

// Printer writes operator-facing output. Narration (steps, results, banner)
// is dropped in quiet mode; items, markers and blocks are always written.
type Printer struct {
	out         io.Writer
	quiet       bool
	color       bool
	interactive bool
}

// Option configures a Printer.
type Option func(*Printer)

// WithQuiet suppresses narration.
func WithQuiet(quiet bool) Option {
	return func(p *Printer) { p.quiet = quiet }
}

// WithColor enables ANSI styling.
func WithColor(color bool) Option {
	return func(p *Printer) { p.color = color }
}

// WithInteractive enables spinners; only set when out is a terminal.
func WithInteractive(interactive bool) Option {
	return func(p *Printer) { p.interactive = interactive }
}

// NewPrinter creates a Printer writing to out. Defaults: not quiet, no color,
// not interactive.
func NewPrinter(out io.Writer, opts ...Option) *Printer {
	p := &Printer{out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Style applies the decoration's colors when color output is enabled.
func (p *Printer) Style(d Decoration, s string) string {
	if !p.color {
		return s
	}
	c, ok := colors[d]
	if !ok {
		return s
	}
	return c.Sprint(s)
}

// Step writes a narration line at the given level. With newline false the
// cursor stays on the line so a result can follow.
func (p *Printer) Step(d Decoration, msg string, newline bool) {
	if p.quiet {
		return
	}
	p.write(d, msg, newline)
}

// Result finishes a narration line started with Step(..., false).
func (p *Printer) Result(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, msg)
}

// Failure finishes a narration line with a styled "error: ..." message.
func (p *Printer) Failure(msg string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.Style(Fail, "error: "+msg))
}

// Item writes a report label. Items are never suppressed.
func (p *Printer) Item(d Decoration, msg string, newline bool) {
	p.write(d, msg, newline)
}

// Line writes raw text followed by a newline. Never suppressed.
func (p *Printer) Line(s string) {
	fmt.Fprintln(p.out, s)
}

// Fatal writes a pre-flight failure. Never suppressed.
func (p *Printer) Fatal(err error) {
	fmt.Fprintln(p.out, p.Style(Fail, "error: "+err.Error()))
}

func (p *Printer) write(d Decoration, msg string, newline bool) {
	line := indents[d] + p.Style(d, msg)
	if newline {
		fmt.Fprintln(p.out, line)
		return
	}
	fmt.Fprint(p.out, line+" ")
}

// Marker renders the terminal glyph for an outcome.
func (p *Printer) Marker(outcome string) string {
	switch outcome {
	case "pass":
		return p.Style(Pass, PassGlyph)
	case "fail":
		return p.Style(Fail, FailGlyph)
	case "skip":
		return p.Style(Skip, SkipLabel)
	default:
		return outcome
	}
}

// Block renders a detailed text block: a head line carrying the marker and
// title, then every line of body quoted.
func (p *Printer) Block(outcome, title, body string) string {
	var b strings.Builder
	if p.color {
		title = text.Bold.Sprint(title)
	}
	b.WriteString(p.Marker(outcome) + ": " + p.Style(Decoration(outcome), title))
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		b.WriteString("\n")
		b.WriteString(p.Style(Quote, "  | ") + line)
	}
	return b.String()
}

// Spin shows a spinner after a pending narration line until stop is called.
// It is a no-op unless the printer is interactive and not quiet.
func (p *Printer) Spin() (stop func()) {
	if !p.interactive || p.quiet {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(p.out))
	s.Start()
	return s.Stop
}
