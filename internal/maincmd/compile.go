package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/rzubek/botl/lang/compiler"
	"github.com/rzubek/botl/lang/engine"
	"github.com/rzubek/botl/lang/token"
	"github.com/rzubek/botl/lang/vm"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFiles(stdio, args...)
}

// CompileFiles compiles each file into a fresh Engine and prints a
// disassembly of every predicate that ended up in its store (grounded on
// the teacher's maincmd.ResolveFiles "run one pipeline stage and print"
// pattern, substituting compiler.Dasm for ast.Printer since this language's
// analog of resolved-AST output is compiled bytecode).
func CompileFiles(stdio mainer.Stdio, files ...string) error {
	e := engine.New()
	e.Compiler.Warn = func(pos token.Pos, msg string) {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", pos, msg)
	}

	var firstErr error
	for _, f := range files {
		if err := e.CompileFile(f); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	e.Store.Each(func(ind vm.Indicator, p *vm.Predicate) {
		fmt.Fprint(stdio.Stdout, compiler.Dasm(p))
	})

	return firstErr
}
