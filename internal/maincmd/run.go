package maincmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/mna/mainer"
	"github.com/rzubek/botl/lang/engine"
	"github.com/rzubek/botl/lang/token"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFile(stdio, args[0], args[1])
}

// RunFile compiles file, then compiles and runs query against it, printing
// success/failure and any top-level variable bindings (spec.md §2's "Test
// harness surface" component, this repo's analog of a top-level REPL
// query).
func RunFile(stdio mainer.Stdio, file, query string) error {
	e := engine.New()
	e.Compiler.Warn = func(pos token.Pos, msg string) {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", pos, msg)
	}

	if err := e.CompileFile(file); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	ok, bindings, err := e.RunQuery(query)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if !ok {
		fmt.Fprintln(stdio.Stdout, "false.")
		return nil
	}
	if len(bindings) == 0 {
		fmt.Fprintln(stdio.Stdout, "true.")
		return nil
	}

	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(stdio.Stdout, "%s = %s\n", name, bindings[name])
	}
	return nil
}
