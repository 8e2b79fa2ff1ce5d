// Package compiler implements the Prolog-family compiler: declaration
// processing, variable analysis, and head/body bytecode emission that turns
// a parsed ast.Term clause into a vm.CompiledClause installed in a
// lang/store.Store (spec.md §4.5 "Compiler").
//
// The bytecode ISA itself (Opcode, FOpcode, Assembler, FAssembler,
// ConstantPool) lives in lang/vm rather than here, even though the package
// table names lang/compiler as its home: lang/vm.Machine interprets that
// ISA directly off vm.CompiledClause/vm.Predicate, and lang/store appends
// synthetic table/primop clauses using the same types without ever
// depending on this package. Keeping the ISA in lang/vm lets store and vm
// share it without either importing compiler, which would otherwise need
// to import vm itself to interpret the bytecode it emits — this package
// only ever emits that ISA, via vm.Assembler/vm.FAssembler, the same way
// the teacher's compiler emits onto its own opcode.go types in the same
// package as the Program it is building for (compiler/compiler.go,
// compiler/opcode.go).
package compiler

import (
	"fmt"

	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/store"
	"github.com/rzubek/botl/lang/token"
)

// Macro is the Pass 2 transform hook: given a top-level term, it returns a
// replacement term and true if it rewrote it, or (nil, false) to leave the
// term untouched. spec.md names macro expansion as out of scope but ambient
// to Pass 2; this registry is the concrete, empty-by-default extension
// point for it.
type Macro func(ast.Term) (ast.Term, bool)

// Compiler drives Passes 1-7 over parsed terms, installing clauses and
// declarations into Store.
type Compiler struct {
	Store *store.Store
	Macro Macro

	// Warn receives singleton-variable and other non-fatal diagnostics
	// (Pass 7). Nil means warnings are discarded.
	Warn func(pos token.Pos, msg string)

	// File is the path of the source currently being compiled, recorded on
	// every CompiledClause for tracing/listing. BaseDir is its directory,
	// used to resolve relative require/1 paths.
	File    string
	BaseDir string

	gensym int
}

// New returns a Compiler installing clauses and declarations into st.
func New(st *store.Store) *Compiler {
	return &Compiler{Store: st}
}

func (c *Compiler) warnf(pos token.Pos, format string, args ...any) {
	if c.Warn != nil {
		c.Warn(pos, fmt.Sprintf(format, args...))
	}
}

// CompileProgram compiles every top-level term in order (Pass 1 through 7
// for clauses, immediate side effects against Store for declarations).
// Per spec.md §7, a bad top-level term aborts only that term: compilation
// continues with the rest of the program, and every error encountered is
// joined into the returned error.
func (c *Compiler) CompileProgram(terms []ast.Term) error {
	var errs []error
	for _, t := range terms {
		if err := c.CompileTerm(t); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}

// CompileTerm runs Pass 1 (macro hook, then declaration-or-clause dispatch)
// on a single top-level term.
func (c *Compiler) CompileTerm(t ast.Term) error {
	if c.Macro != nil {
		if rewritten, ok := c.Macro(t); ok {
			t = rewritten
		}
	}
	if name, args, ok := asDeclaration(t); ok {
		return c.processDecl(name, args, t.Pos())
	}
	return c.compileClause(t)
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		msg := fmt.Sprintf("%d compile errors:", len(errs))
		for _, e := range errs {
			msg += "\n  " + e.Error()
		}
		return fmt.Errorf("%s", msg)
	}
}

func (c *Compiler) nextGensym(prefix string) string {
	c.gensym++
	return fmt.Sprintf("$%s_%d", prefix, c.gensym)
}
