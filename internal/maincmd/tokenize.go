package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/rzubek/botl/lang/scanner"
	"github.com/rzubek/botl/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles runs the scanner phase over each file and prints its token
// stream, one token per line (grounded on the teacher's
// maincmd.TokenizeFiles).
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", f, err)
			firstErr = err
			continue
		}
		var scanErr error
		toks := scanner.ScanAll(src, func(pos token.Pos, msg string) {
			fmt.Fprintf(stdio.Stderr, "%s: %s: %s\n", f, pos, msg)
			scanErr = fmt.Errorf("%s: %s", f, msg)
		})
		for _, tv := range toks {
			if tv.Value.Raw != "" {
				fmt.Fprintf(stdio.Stdout, "%s: %s %q\n", tv.Value.Pos, tv.Token, tv.Value.Raw)
			} else {
				fmt.Fprintf(stdio.Stdout, "%s: %s\n", tv.Value.Pos, tv.Token)
			}
		}
		if scanErr != nil && firstErr == nil {
			firstErr = scanErr
		}
	}
	return firstErr
}
