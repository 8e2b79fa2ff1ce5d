package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/parser"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(stdio, args...)
}

// ParseFiles runs the parser phase over each file and prints every
// top-level term it produces (grounded on the teacher's maincmd.ParseFiles).
func ParseFiles(stdio mainer.Stdio, files ...string) error {
	printer := ast.Printer{Output: stdio.Stdout}
	var firstErr error
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", f, err)
			firstErr = err
			continue
		}
		terms, err := parser.ParseProgram(src, nil)
		for _, t := range terms {
			if perr := printer.Print(t); perr != nil {
				fmt.Fprintln(stdio.Stderr, perr)
				return perr
			}
		}
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", f, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
