// Package diag renders parse and runtime diagnostics in the format the
// driver writes to stdout, with the error-kind label colourized when
// writing to a terminal.
package diag

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/sam-decook/loxi/internal/interp"
	"github.com/sam-decook/loxi/internal/parser"
)

var parseLabel = color.New(color.FgRed).SprintFunc()
var runtimeLabel = color.New(color.FgRed).SprintFunc()

// PrintParseError writes one parser diagnostic in the form:
//
//	<file>:<line>:<col>: parse error: <message>
//	<line of source>
//	     ^~~~
//
// src is the full source the diagnostic's token was scanned from, used to
// recover the offending line for the caret.
func PrintParseError(w io.Writer, src []byte, d parser.Diagnostic) {
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.File, d.Token.Line, d.Token.Col, parseLabel("parse error"), d.Message)

	line, col := sourceLine(src, d.Token.Start, d.Token.Line)
	if line == "" {
		return
	}
	fmt.Fprintln(w, line)

	width := d.Token.Len
	if width <= 0 {
		width = 1
	}
	fmt.Fprintf(w, "%s^%s\n", spaces(col-1), tildes(width-1))
}

// PrintRuntimeError writes a runtime error in the form:
//
//	<file>:<line> runtime error: <message>
func PrintRuntimeError(w io.Writer, file string, err *interp.RuntimeError) {
	fmt.Fprintf(w, "%s:%d %s: %s\n", file, err.Token.Line, runtimeLabel("runtime error"), err.Message)
}

// sourceLine recovers the text of the line containing byte offset start and
// the 1-based column of start within that line.
func sourceLine(src []byte, start, line int) (string, int) {
	if start < 0 || start > len(src) {
		return "", 0
	}

	lineStart := bytes.LastIndexByte(src[:start], '\n')
	lineStart++ // -1 (not found) becomes 0; otherwise skip past the '\n'

	lineEnd := bytes.IndexByte(src[lineStart:], '\n')
	if lineEnd < 0 {
		lineEnd = len(src)
	} else {
		lineEnd += lineStart
	}

	_ = line // line number is already known from the token; kept for symmetry
	return string(bytes.TrimRight(src[lineStart:lineEnd], "\r")), start - lineStart + 1
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return string(bytes.Repeat([]byte{' '}, n))
}

func tildes(n int) string {
	if n <= 0 {
		return ""
	}
	return string(bytes.Repeat([]byte{'~'}, n))
}
