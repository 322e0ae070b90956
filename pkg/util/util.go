// Package util prints a *cerr.Error to stderr as a stage-prefixed
// message with a source excerpt and a caret. It is the only package that
// cares whether that stream is a terminal; every pipeline stage itself
// only ever returns errors.
package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mc-lang/mcc/pkg/cerr"
	"github.com/mc-lang/mcc/pkg/config"
)

// useColor decides whether diagnostics should carry ANSI color, honoring
// the tri-state ColorDiagnostics override before falling back to an
// isatty check on w.
func useColor(w io.Writer, mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		f, ok := w.(*os.File)
		return ok && isatty.IsTerminal(f.Fd())
	}
}

// PrintError writes err to w as "<stage>: error: <line>:<col>: <message>",
// followed by the offending source line and a caret under the column,
// when src and a real position are available.
func PrintError(w io.Writer, err *cerr.Error, src string) {
	color := useColor(w, config.ColorAuto)
	printErrorWithConfig(w, err, src, color)
}

// PrintErrorConfig is PrintError with an explicit color policy, used by
// the CLI driver once it has parsed --color.
func PrintErrorConfig(w io.Writer, err *cerr.Error, src string, mode config.ColorMode) {
	printErrorWithConfig(w, err, src, useColor(w, mode))
}

func printErrorWithConfig(w io.Writer, err *cerr.Error, src string, color bool) {
	label := "error"
	if color {
		fmt.Fprintf(w, "%s: \033[31m%s:\033[0m ", err.Stage, label)
	} else {
		fmt.Fprintf(w, "%s: %s: ", err.Stage, label)
	}
	if err.Line != 0 || err.Column != 0 {
		fmt.Fprintf(w, "%d:%d: ", err.Line, err.Column)
	}
	fmt.Fprintln(w, err.Message)

	if err.Line > 0 {
		printSourceExcerpt(w, src, err.Line, err.Column, color)
	}
}

func printSourceExcerpt(w io.Writer, src string, line, col int, color bool) {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return
	}
	text := lines[line-1]
	fmt.Fprintf(w, "  %s\n", text)

	pad := col - 1
	if pad < 0 {
		pad = 0
	}
	if color {
		fmt.Fprintf(w, "  %s\033[32m^\033[0m\n", strings.Repeat(" ", pad))
	} else {
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", pad))
	}
}
