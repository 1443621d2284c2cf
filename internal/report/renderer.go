package report

import "shakedown/internal/console"

// lineWriter tracks whether a label is waiting for its marker on the current
// line, so that any other output first terminates that line.
type lineWriter struct {
	p    *console.Printer
	open bool
}

func (w *lineWriter) label(d console.Decoration, msg string) {
	w.breakLine()
	w.p.Item(d, msg, false)
	w.open = true
}

func (w *lineWriter) item(d console.Decoration, msg string) {
	w.breakLine()
	w.p.Item(d, msg, true)
}

func (w *lineWriter) step(d console.Decoration, msg string) {
	w.breakLine()
	w.p.Step(d, msg, true)
}

// finish ends the pending label with a marker, or prints the marker on its
// own line when no label is pending.
func (w *lineWriter) finish(marker string) {
	if w.open {
		w.p.Line(marker)
		w.open = false
		return
	}
	w.p.Item(console.ItemMinor, marker, true)
}

func (w *lineWriter) line(s string) {
	w.breakLine()
	w.p.Line(s)
}

func (w *lineWriter) breakLine() {
	if w.open {
		w.p.Line("")
		w.open = false
	}
}

// Renderer decides when detailed text blocks reach the output. Markers and
// labels never go through a Renderer.
type Renderer interface {
	// Block receives a fully formatted block.
	Block(block string)
	// Finish is called once, after the completion header.
	Finish()
}

func newRenderer(timing Timing, w *lineWriter) Renderer {
	if timing == TimingInline {
		return &inlineRenderer{w: w}
	}
	return &deferredRenderer{w: w}
}

// inlineRenderer writes every block the moment it is produced.
type inlineRenderer struct {
	w *lineWriter
}

func (r *inlineRenderer) Block(block string) {
	r.w.line(block)
}

func (r *inlineRenderer) Finish() {}

// deferredRenderer keeps blocks in append order until Finish.
type deferredRenderer struct {
	w      *lineWriter
	blocks []string
}

func (r *deferredRenderer) Block(block string) {
	r.blocks = append(r.blocks, block)
}

func (r *deferredRenderer) Finish() {
	for _, block := range r.blocks {
		r.w.line(block)
	}
	r.blocks = nil
}
