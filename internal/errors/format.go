package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

const (
	styleReset  = "\033[0m"
	styleBold   = "\033[1m"
	styleRed    = "\033[31m"
	styleGreen  = "\033[32m"
	styleYellow = "\033[33m"
	styleBlue   = "\033[34m"
	styleCyan   = "\033[36m"
	styleDim    = "\033[90m"
)

// useColor honors the NO_COLOR convention until SetColor overrides it.
var useColor = os.Getenv("NO_COLOR") == ""

// SetColor turns ANSI styling of reports on or off.
func SetColor(on bool) {
	useColor = on
}

func paint(style, s string) string {
	if !useColor {
		return s
	}
	return style + s + styleReset
}

// routeProblem is implemented by errors tied to one node of a route table,
// such as router.ConfigError.
type routeProblem interface {
	RoutePath() string
	Problem() string
}

// hopChain is implemented by errors that carry a redirect chain, such as
// router.RedirectLoopError.
type hopChain interface {
	Hops() []string
	HopLimit() int
}

// Format renders the error as a multi-line terminal report. Route table
// failures list each offending route; redirect loops list every hop.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(paint(styleRed+styleBold, "ERROR"))
	if e.Code != "" {
		b.WriteString(" " + paint(styleBold, e.Code))
	}
	b.WriteString("  " + e.Message + "\n\n")

	if e.Location != nil {
		e.writeSource(&b)
	}
	for _, line := range wrap(e.Detail, 72) {
		b.WriteString("  " + line + "\n")
	}
	if e.Detail != "" {
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		writeCauses(&b, e.Wrapped)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n\n", paint(styleCyan, "Hint:"), e.Suggestion)
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s %s\n", paint(styleDim, "Learn more:"), paint(styleBlue, e.DocURL))
	}
	return b.String()
}

// writeSource prints the location followed by the captured file excerpt,
// marking the failing line and column.
func (e *Error) writeSource(b *strings.Builder) {
	b.WriteString("  " + paint(styleCyan, e.Location.String()) + "\n\n")
	if len(e.Context) == 0 {
		return
	}
	gutter := paint(styleDim, "│")
	for i, text := range e.Context {
		n := e.contextFrom + i
		mark := " "
		if n == e.Location.Line {
			mark = paint(styleRed, "→")
		}
		fmt.Fprintf(b, "  %s %4d %s %s\n", mark, n, gutter, text)
		if n == e.Location.Line && e.Location.Column > 0 {
			fmt.Fprintf(b, "         %s %s%s\n", gutter, strings.Repeat(" ", e.Location.Column-1), paint(styleRed, "^"))
		}
	}
	b.WriteString("\n")
}

// writeCauses prints the wrapped error: a redirect chain as numbered hops,
// route problems in an aligned table, anything else as a bullet.
func writeCauses(b *strings.Builder, err error) {
	var loop hopChain
	if stderrors.As(err, &loop) {
		writeHops(b, loop)
		return
	}

	list := []error{err}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		list = multi.Unwrap()
	}

	width := 0
	for _, c := range list {
		if rp, ok := c.(routeProblem); ok {
			width = max(width, len(rp.RoutePath()))
		}
	}
	for _, c := range list {
		if rp, ok := c.(routeProblem); ok {
			fmt.Fprintf(b, "    %s  %s\n", paint(styleCyan, fmt.Sprintf("%-*s", width, rp.RoutePath())), rp.Problem())
			continue
		}
		fmt.Fprintf(b, "  %s %s\n", paint(styleRed, "•"), strings.TrimSpace(c.Error()))
	}
	b.WriteString("\n")
}

// writeHops prints a redirect chain and why it stopped.
func writeHops(b *strings.Builder, loop hopChain) {
	hops := loop.Hops()
	for i, path := range hops {
		fmt.Fprintf(b, "  %3d  %s\n", i+1, path)
	}
	if n := len(hops); n > 0 && slices.Contains(hops[:n-1], hops[n-1]) {
		fmt.Fprintf(b, "       %s\n\n", paint(styleYellow, hops[n-1]+" was already visited"))
	} else {
		fmt.Fprintf(b, "       %s\n\n", paint(styleYellow, fmt.Sprintf("more than %d redirects", loop.HopLimit())))
	}
}

// FormatCompact returns the error on one line.
func (e *Error) FormatCompact() string {
	parts := make([]string, 0, 4)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	if e.Wrapped != nil {
		parts = append(parts, e.Wrapped.Error())
	}
	return strings.Join(parts, ": ")
}

// wrap breaks text into lines of at most width bytes where word lengths allow.
func wrap(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		if line != "" && len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = ""
		}
		if line != "" {
			line += " "
		}
		line += word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Report writes err to w as a formatted report. Errors that are not already
// an *Error are coded with FromError and fallback.
func Report(w io.Writer, err error, fallback string) {
	fmt.Fprint(w, FromError(err, fallback).Format())
}

// FormatWarning renders a one-line warning.
func FormatWarning(message string) string {
	return paint(styleYellow+styleBold, "WARN ") + message
}

// FormatSuccess renders a one-line success message.
func FormatSuccess(message string) string {
	return paint(styleGreen, "✓ ") + message
}
