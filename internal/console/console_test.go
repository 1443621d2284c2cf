package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_StepAndResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Step(StepMajor, "Running pre-flight checks...", true)
	p.Step(StepMinor, "Checking for go toolchain...", false)
	p.Result("go1.25.6")

	assert.Equal(t, "Running pre-flight checks...\n  Checking for go toolchain... go1.25.6\n", buf.String())
}

func TestPrinter_QuietSuppressesNarrationOnly(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithQuiet(true))

	p.Banner("1.0.0")
	p.Step(StepMajor, "Running pre-flight checks...", true)
	p.Result("ok")
	p.Failure("authentication failed.")
	p.Item(ItemMajor, "pkg", true)
	p.Fatal(errors.New("no authentication credentials or token found."))

	assert.Equal(t, "    pkg\nerror: no authentication credentials or token found.\n", buf.String())
}

func TestPrinter_Marker(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	assert.Equal(t, PassGlyph, p.Marker("pass"))
	assert.Equal(t, FailGlyph, p.Marker("fail"))
	assert.Equal(t, SkipLabel, p.Marker("skip"))
}

func TestPrinter_Block(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	block := p.Block("fail", "pkg::TestX", "\nline one\nline two\n")
	assert.Equal(t, "✗: pkg::TestX\n  | line one\n  | line two", block)
}

func TestPrinter_StyleWithColor(t *testing.T) {
	plain := NewPrinter(&bytes.Buffer{})
	colored := NewPrinter(&bytes.Buffer{}, WithColor(true))

	assert.Equal(t, "x", plain.Style(Fail, "x"))
	assert.Contains(t, colored.Style(Fail, "x"), "x")
	assert.Equal(t, "x", colored.Style(ItemMinor, "x"), "undecorated roles stay plain")
}

func TestPrinter_SpinIsNoopWhenNotInteractive(t *testing.T) {
	var buf bytes.Buffer
	stop := NewPrinter(&buf).Spin()
	stop()
	assert.Empty(t, buf.String())
}
