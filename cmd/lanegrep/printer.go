package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/hupe1980/lanegrep"
	"github.com/hupe1980/lanegrep/internal/config"
)

// printer writes matches in grep format, colouring file names like grep
// does when enabled.
type printer struct {
	w     *bufio.Writer
	name  *color.Color
	sep   *color.Color
	plain bool
}

func newPrinter(w io.Writer, mode string) *printer {
	name := color.New(color.FgMagenta)
	sep := color.New(color.FgCyan)

	enabled := false
	switch mode {
	case config.ColorAlways:
		enabled = true
	case config.ColorAuto:
		if f, ok := w.(*os.File); ok {
			enabled = isatty.IsTerminal(f.Fd()) && os.Getenv("NO_COLOR") == ""
		}
	}
	if enabled {
		name.EnableColor()
		sep.EnableColor()
	} else {
		name.DisableColor()
		sep.DisableColor()
	}

	return &printer{w: bufio.NewWriter(w), name: name, sep: sep, plain: !enabled}
}

func (p *printer) label(label string) {
	if p.plain {
		_, _ = p.w.WriteString(label)
		_ = p.w.WriteByte(':')
		return
	}
	_, _ = p.name.Fprint(p.w, label)
	_, _ = p.sep.Fprint(p.w, ":")
}

func (p *printer) matches(ms []lanegrep.Match) {
	for _, m := range ms {
		if m.Label != "" {
			p.label(m.Label)
		}
		_, _ = p.w.Write(m.Line)
		_ = p.w.WriteByte('\n')
	}
}

func (p *printer) count(label string, n int) {
	if label != "" {
		p.label(label)
	}
	fmt.Fprintf(p.w, "%d\n", n)
}

func (p *printer) flush() error {
	return p.w.Flush()
}
