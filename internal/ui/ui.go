package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pcmnking/liangfstar/internal/batch"
	"github.com/pcmnking/liangfstar/internal/rules"
)

// ANSI color codes.
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	yellow  = "\033[33m"
	green   = "\033[32m"
	red     = "\033[31m"
	cyan    = "\033[36m"
	magenta = "\033[35m"
)

// Printer writes human-facing status lines. Data output goes to stdout
// through the render functions; Printer only talks to its status writer.
type Printer struct {
	w       io.Writer
	noColor bool
}

// New returns a Printer on stderr.
func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewWriter returns a Printer on w. With noColor set no escape codes are
// written.
func NewWriter(w io.Writer, noColor bool) *Printer {
	return &Printer{w: w, noColor: noColor}
}

func (p *Printer) c(code string) string {
	if p.noColor {
		return ""
	}
	return code
}

func (p *Printer) Banner() {
	fmt.Fprintln(p.w, p.c(bold+cyan)+"  ╔══════════════════════════════╗"+p.c(reset))
	fmt.Fprintln(p.w, p.c(bold+cyan)+"  ║"+p.c(reset+bold)+"  LIANGFSTAR  "+p.c(dim)+"飛星四化引擎"+p.c(reset+bold+cyan)+"    ║"+p.c(reset))
	fmt.Fprintln(p.w, p.c(bold+cyan)+"  ╚══════════════════════════════╝"+p.c(reset))
	fmt.Fprintln(p.w)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, p.c(red+bold)+"error: "+p.c(reset)+"%s\n", msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, p.c(dim)+"%s"+p.c(reset)+"\n", msg)
}

func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, p.c(green+bold)+"✓ "+p.c(reset)+"%s\n", msg)
}

// RulesValidated reports the outcome of validating one rule file.
func (p *Printer) RulesValidated(source string, count int, errs []rules.ValidationError) {
	if len(errs) == 0 {
		fmt.Fprintf(p.w, p.c(green+bold)+"✓ rules %q"+p.c(reset)+" %d rule(s), no errors\n", source, count)
		return
	}
	fmt.Fprintf(p.w, p.c(red+bold)+"✗ rules %q"+p.c(reset)+" %d error(s):\n", source, len(errs))
	for _, e := range errs {
		fmt.Fprintf(p.w, "  "+p.c(red)+"• "+p.c(reset)+"%s\n", e.Error())
	}
}

// RulesReloaded reports a watch-triggered reload. A failed reload keeps the
// previous rule set, which the message says.
func (p *Printer) RulesReloaded(source string, count int, err error) {
	stamp := time.Now().Format("15:04:05")
	if err != nil {
		fmt.Fprintf(p.w, p.c(dim)+"[%s] "+p.c(reset+yellow+bold)+"⚠ reload of %s failed"+p.c(reset)+", keeping previous rules: %v\n", stamp, source, err)
		return
	}
	fmt.Fprintf(p.w, p.c(dim)+"[%s] "+p.c(reset+magenta)+"↻ reloaded %s"+p.c(reset)+" (%d rules)\n", stamp, source, count)
}

// BatchDone summarizes a batch run on one line.
func (p *Printer) BatchDone(results []batch.Result, d time.Duration) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	color := green
	if failed > 0 {
		color = yellow
	}
	fmt.Fprintf(p.w, p.c(color+bold)+"◆ batch complete"+p.c(reset)+" %d chart(s), %d failed "+p.c(dim)+"(%s)"+p.c(reset)+"\n",
		len(results), failed, d.Round(time.Millisecond))
}
