// Command loxi runs a single source file through the scanner, parser, and
// tree-walking evaluator.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/sam-decook/loxi/internal/diag"
	"github.com/sam-decook/loxi/internal/interp"
	"github.com/sam-decook/loxi/internal/parser"
)

const (
	exitUsage   = 0
	exitParse   = 65
	exitRuntime = 70
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) != 2 {
		fmt.Println("Usage: loxi <path>")
		return exitUsage
	}

	path := args[1]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, describeOpenError(path, err))
		return exitRuntime
	}

	p := parser.New(path, src)
	prog, diags := p.Parse()
	if len(diags) > 0 {
		for _, d := range diags {
			diag.PrintParseError(os.Stdout, src, d)
		}
		return exitParse
	}

	it := interp.New(os.Stdout)
	result := it.Run(prog)
	if result.Kind == interp.ResError {
		diag.PrintRuntimeError(os.Stdout, path, result.Err)
		return exitRuntime
	}
	return 0
}

// describeOpenError maps a file-open failure to the human-readable
// categories the driver recognizes: too large, I/O error, access denied,
// not found, is-a-directory, or a generic fallback.
func describeOpenError(path string, err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("%s: no such file", path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("%s: permission denied", path)
	case errors.Is(err, syscall.EISDIR):
		return fmt.Sprintf("%s: is a directory", path)
	case errors.Is(err, syscall.EFBIG):
		return fmt.Sprintf("%s: file too large", path)
	case errors.Is(err, syscall.EIO):
		return fmt.Sprintf("%s: I/O error", path)
	default:
		return fmt.Sprintf("%s: %v", path, err)
	}
}
