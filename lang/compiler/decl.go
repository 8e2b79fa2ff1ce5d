package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/parser"
	"github.com/rzubek/botl/lang/store"
	"github.com/rzubek/botl/lang/symbol"
	"github.com/rzubek/botl/lang/token"
	"github.com/rzubek/botl/lang/vm"
)

// reservedDecls are the eleven declaration functors processed as Pass 1
// side effects against Store instead of being compiled as ordinary clauses
// (spec.md §6, SPEC_FULL.md's declaration-processing expansion).
var reservedDecls = map[string]bool{
	"function":          true,
	"table":             true,
	"require":           true,
	"global":            true,
	"report":            true,
	"struct":            true,
	"signature":         true,
	"trace":             true,
	"notrace":           true,
	"externally_called": true,
	"listing":           true,
}

// asDeclaration reports whether t's functor is a reserved declaration name,
// returning its name and arguments (nil for a zero-arity declaration like
// bare `notrace.`).
func asDeclaration(t ast.Term) (name string, args []ast.Term, ok bool) {
	switch v := t.(type) {
	case *ast.Sym:
		if reservedDecls[v.Name.Name()] {
			return v.Name.Name(), nil, true
		}
	case *ast.Call:
		if reservedDecls[v.Functor.Name()] {
			return v.Functor.Name(), v.Args, true
		}
	}
	return "", nil, false
}

func (c *Compiler) processDecl(name string, args []ast.Term, pos token.Pos) error {
	switch name {
	case "function":
		return c.declFunction(args)
	case "table":
		return c.declTable(args)
	case "require":
		return c.declRequire(args, pos)
	case "global":
		return c.declGlobal(args)
	case "report":
		return c.declReport(args, pos)
	case "struct":
		return c.declStruct(args)
	case "signature":
		return c.declSignature(args)
	case "trace":
		return c.declTrace(args, true)
	case "notrace":
		return c.declTrace(args, false)
	case "externally_called":
		return c.declExternallyCalled(args)
	case "listing":
		return c.declListing(args, pos)
	default:
		return fmt.Errorf("compiler: unhandled declaration %q", name)
	}
}

// declFunction(Name/Arity) pre-registers the predicate so forward
// references within the same file resolve at compile time. A "function"
// is, by the surface language's convention, a rule predicate the caller
// expects to behave deterministically; this compiler does not itself
// verify determinism (that would require running the program), so the
// declaration's only compile-time effect is ensuring the predicate exists.
func (c *Compiler) declFunction(args []ast.Term) error {
	ind, err := c.requireIndicatorArg(args, "function")
	if err != nil {
		return err
	}
	c.Store.Predicate(ind)
	return nil
}

// declTable(Name/Arity) pre-declares Name/Arity as a table predicate with
// no rows yet, so subsequent ground facts for that indicator are appended
// as TableRows (see compileClause) rather than compiled as rule clauses.
func (c *Compiler) declTable(args []ast.Term) error {
	name, arity, err := c.parseIndicatorArg(args, "table")
	if err != nil {
		return err
	}
	c.Store.DefineTable(name, arity, nil)
	return nil
}

// declRequire(Path) parses and compiles another source file, skipping it
// if its canonical path was already required (store.MarkRequired).
func (c *Compiler) declRequire(args []ast.Term, pos token.Pos) error {
	if len(args) != 1 {
		return fmt.Errorf("require/1: expected one argument at %s", pos)
	}
	path, ok := atomName(args[0])
	if !ok {
		return fmt.Errorf("require/1: argument must be an atom or string at %s", pos)
	}
	if c.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(c.BaseDir, path)
	}
	canonical, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("require/1: %w", err)
	}
	if !c.Store.MarkRequired(canonical) {
		return nil
	}
	src, err := os.ReadFile(canonical)
	if err != nil {
		return fmt.Errorf("require/1: %w", err)
	}
	terms, err := parser.ParseProgram(src, c.Store.Symbols)
	if err != nil {
		return fmt.Errorf("require/1: %s: %w", canonical, err)
	}
	prevDir, prevFile := c.BaseDir, c.File
	c.BaseDir = filepath.Dir(canonical)
	c.File = canonical
	defer func() { c.BaseDir, c.File = prevDir, prevFile }()
	return c.CompileProgram(terms)
}

// declGlobal(Name) declares a mutable global variable (lang/store.Globals).
func (c *Compiler) declGlobal(args []ast.Term) error {
	for _, a := range args {
		name, ok := atomName(a)
		if !ok {
			return fmt.Errorf("global/1: argument must be an atom or string")
		}
		c.Store.Globals.Declare(name)
	}
	return nil
}

// declReport(...) surfaces its arguments through Compiler.Warn, a
// compile-time print directive.
func (c *Compiler) declReport(args []ast.Term, pos token.Pos) error {
	msg := ""
	for i, a := range args {
		if i > 0 {
			msg += " "
		}
		msg += a.String()
	}
	c.warnf(pos, "report: %s", msg)
	return nil
}

// declStruct(Name, [Field, ...]) expands into a constructor/accessor
// predicate family via lang/store.DefineStruct.
func (c *Compiler) declStruct(args []ast.Term) error {
	if len(args) != 2 {
		return fmt.Errorf("struct/2: expected (Name, [Field, ...])")
	}
	name, ok := atomName(args[0])
	if !ok {
		return fmt.Errorf("struct/2: Name must be an atom")
	}
	elems, ok := listOf(args[1])
	if !ok {
		return fmt.Errorf("struct/2: second argument must be a list of field names")
	}
	fields := make([]string, len(elems))
	for i, e := range elems {
		f, ok := atomName(e)
		if !ok {
			return fmt.Errorf("struct/2: field name must be an atom")
		}
		fields[i] = f
	}
	c.Store.DefineStruct(name, fields)
	return nil
}

// declSignature(Indicator, [Type, ...]) records a documentation/type-check
// tuple on the named predicate.
func (c *Compiler) declSignature(args []ast.Term) error {
	if len(args) != 2 {
		return fmt.Errorf("signature/2: expected (Indicator, [Type, ...])")
	}
	ind, err := c.requireIndicatorArg(args[:1], "signature")
	if err != nil {
		return err
	}
	elems, ok := listOf(args[1])
	if !ok {
		return fmt.Errorf("signature/2: second argument must be a list of type names")
	}
	sig := make([]*symbol.Symbol, len(elems))
	for i, e := range elems {
		name, ok := atomName(e)
		if !ok {
			return fmt.Errorf("signature/2: type name must be an atom")
		}
		sig[i] = c.Store.Symbols.Intern(name)
	}
	c.Store.Predicate(ind).Signature = sig
	return nil
}

func (c *Compiler) declTrace(args []ast.Term, on bool) error {
	if len(args) == 0 {
		return nil
	}
	ind, err := c.requireIndicatorArg(args, "trace/notrace")
	if err != nil {
		return err
	}
	c.Store.Predicate(ind).IsTraced = on
	return nil
}

func (c *Compiler) declExternallyCalled(args []ast.Term) error {
	ind, err := c.requireIndicatorArg(args, "externally_called")
	if err != nil {
		return err
	}
	c.Store.Predicate(ind).IsExternallyCalled = true
	return nil
}

// declListing(Indicator) echoes a disassembly of the named predicate's
// compiled clauses through Compiler.Warn, the compiler's only I/O surface.
func (c *Compiler) declListing(args []ast.Term, pos token.Pos) error {
	if len(args) == 0 {
		return nil
	}
	ind, err := c.requireIndicatorArg(args, "listing")
	if err != nil {
		return err
	}
	p, ok := c.Store.Lookup(ind)
	if !ok {
		return nil
	}
	c.warnf(pos, "listing %s:\n%s", ind, Dasm(p))
	return nil
}

func (c *Compiler) requireIndicatorArg(args []ast.Term, who string) (vm.Indicator, error) {
	name, arity, err := c.parseIndicatorArg(args, who)
	if err != nil {
		return vm.Indicator{}, err
	}
	return vm.Indicator{Name: c.Store.Symbols.Intern(name), Arity: arity}, nil
}

func (c *Compiler) parseIndicatorArg(args []ast.Term, who string) (string, int, error) {
	if len(args) == 0 {
		return "", 0, fmt.Errorf("%s: expected a Name/Arity argument", who)
	}
	name, arity, ok := indicatorOf(args[0])
	if !ok {
		return "", 0, fmt.Errorf("%s: argument must be a Name/Arity indicator", who)
	}
	return name, arity, nil
}

// indicatorOf reads a Name/Arity indicator term (a "/" call) or a bare
// callable term used as its own indicator.
func indicatorOf(t ast.Term) (string, int, bool) {
	if c, ok := t.(*ast.Call); ok && c.Functor.Name() == "/" && len(c.Args) == 2 {
		name, nameOK := atomName(c.Args[0])
		n, nOK := intValue(c.Args[1])
		if nameOK && nOK {
			return name, int(n), true
		}
	}
	if name, arity, ok := ast.Indicator(t); ok {
		return name.Name(), arity, true
	}
	return "", 0, false
}

func atomName(t ast.Term) (string, bool) {
	switch v := t.(type) {
	case *ast.Sym:
		return v.Name.Name(), true
	case *ast.Str:
		return v.Value, true
	default:
		return "", false
	}
}

func intValue(t ast.Term) (int64, bool) {
	if i, ok := t.(*ast.Int); ok {
		return i.Value, true
	}
	return 0, false
}

// listOf desugars a "[...]" literal, parsed as a call to the reserved
// "$array" functor (lang/parser's parseListLiteral), back into its element
// terms.
func listOf(t ast.Term) ([]ast.Term, bool) {
	switch v := t.(type) {
	case *ast.Sym:
		if v.Name.Name() == "$array" {
			return nil, true
		}
	case *ast.Call:
		if v.Functor.Name() == "$array" {
			return v.Args, true
		}
	}
	return nil, false
}
