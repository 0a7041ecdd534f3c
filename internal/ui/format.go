// Package ui formats command output for the terminal.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
	"github.com/olekukonko/tablewriter"

	apperrors "sparkload/pkg/errors"
)

// Printer writes status lines and tables to one stream
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter returns a printer for w. Colour is enabled when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{out: w, color: color}
}

// ColorEnabled reports whether output is coloured
func (p *Printer) ColorEnabled() bool {
	return p.color
}

func (p *Printer) paint(text, style string) string {
	if !p.color {
		return text
	}
	return ansi.Color(text, style)
}

// Header prints a boxed title
func (p *Printer) Header(title string) {
	width := len(title) + 4
	fmt.Fprintln(p.out, "+"+strings.Repeat("-", width-2)+"+")
	fmt.Fprintf(p.out, "| %s |\n", p.paint(title, "default+b"))
	fmt.Fprintln(p.out, "+"+strings.Repeat("-", width-2)+"+")
}

// Success prints a success line
func (p *Printer) Success(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", p.paint("SUCCESS:", ansi.Green), fmt.Sprintf(format, args...))
}

// Warning prints a warning line
func (p *Printer) Warning(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", p.paint("WARNING:", ansi.Yellow), fmt.Sprintf(format, args...))
}

// Info prints an informational line
func (p *Printer) Info(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", p.paint("INFO:", ansi.Cyan), fmt.Sprintf(format, args...))
}

// Error prints err. Application errors show their code, cause and
// suggestions on separate lines.
func (p *Printer) Error(err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		fmt.Fprintf(p.out, "%s %v\n", p.paint("ERROR:", ansi.Red), err)
		return
	}

	fmt.Fprintf(p.out, "%s [%s] %s\n", p.paint("ERROR:", ansi.Red), appErr.Code, appErr.Message)
	if appErr.Cause != nil {
		fmt.Fprintf(p.out, "  %s\n", p.paint("cause: "+appErr.Cause.Error(), "default+h"))
	}
	for _, s := range appErr.Suggestions {
		fmt.Fprintf(p.out, "  %s %s\n", p.paint("TIP:", ansi.Cyan), s)
	}
}

// Table prints rows under headers
func (p *Printer) Table(headers []string, rows [][]string) {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

// Status renders a pass or fail word
func (p *Printer) Status(ok bool) string {
	if ok {
		return p.paint("OK", ansi.Green)
	}
	return p.paint("FAIL", ansi.Red)
}
