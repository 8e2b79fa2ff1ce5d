// Package engine is the embedding API: the one stop a host program needs to
// load source, run queries, and manipulate globals and tables without
// touching lang/store or lang/vm directly (spec.md §6 "Embedding API").
package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/compiler"
	"github.com/rzubek/botl/lang/parser"
	"github.com/rzubek/botl/lang/store"
	"github.com/rzubek/botl/lang/symbol"
	"github.com/rzubek/botl/lang/vm"
)

// DefaultExtension is appended to a CompileFile path that has none (spec.md
// §6 "paths without extension default to the source extension").
const DefaultExtension = ".pl"

// stackCapacity sizes the Goal VM's data stack. Large enough for
// interactive and test use without the embedder having to think about it;
// an embedder needing more controls it by constructing a Store/Machine/
// Compiler directly instead of going through Engine.
const stackCapacity = 64 * 1024

// Engine bundles one predicate store, one Goal VM, and one compiler: the
// unit spec.md §5's Design Notes asks global state to be encapsulated into
// ("encapsulate in an Engine value that holds them; allow multiple
// engines; keep an ambient default for ergonomic embedding").
type Engine struct {
	Store    *store.Store
	Machine  *vm.Machine
	Compiler *compiler.Compiler

	queryGensym int
}

// New returns an Engine with a fresh Store, Machine, and Compiler, wired
// together and ready to compile and run programs.
func New() *Engine {
	st := store.New(symbol.NewTable())
	m := vm.NewMachine(st, stackCapacity)
	c := compiler.New(st)
	return &Engine{Store: st, Machine: m, Compiler: c}
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default lazily constructs the package-level ambient Engine, matching the
// teacher's machine.Universe package-level singleton idiom. Simple
// embedders that don't need multiple isolated engines can call the
// top-level Compile/Run functions instead of constructing their own.
func Default() *Engine {
	defaultOnce.Do(func() { defaultEngine = New() })
	return defaultEngine
}

// Compile parses and compiles source against the ambient Default engine.
func Compile(source string) error { return Default().Compile(source) }

// Run compiles and executes query against the ambient Default engine.
func Run(query string) (bool, error) { return Default().Run(query) }

// Compile parses source as a sequence of top-level terms and compiles each
// one in order (spec.md §6 "Compile(source): parse and process each
// top-level term until EOF").
func (e *Engine) Compile(source string) error {
	terms, err := parser.ParseProgram([]byte(source), e.Store.Symbols)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return e.Compiler.CompileProgram(terms)
}

// CompileFile reads and compiles the file at path, defaulting its
// extension when absent and skipping it if its canonical path was already
// compiled (spec.md §6 "CompileFile(path): as above, idempotent by
// canonical path").
func (e *Engine) CompileFile(path string) error {
	if filepath.Ext(path) == "" {
		path += DefaultExtension
	}
	canonical, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if !e.Store.MarkRequired(canonical) {
		return nil
	}
	src, err := os.ReadFile(canonical)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	terms, err := parser.ParseProgram(src, e.Store.Symbols)
	if err != nil {
		return fmt.Errorf("engine: %s: %w", canonical, err)
	}

	prevDir, prevFile := e.Compiler.BaseDir, e.Compiler.File
	e.Compiler.BaseDir = filepath.Dir(canonical)
	e.Compiler.File = canonical
	defer func() { e.Compiler.BaseDir, e.Compiler.File = prevDir, prevFile }()

	return e.Compiler.CompileProgram(terms)
}

// Run compiles query as a top-level goal, runs it to its first solution,
// and reports whether one was found (spec.md §6 "Run(query: string) →
// bool: compile the term as a top-level goal, execute, return whether
// first solution exists").
func (e *Engine) Run(query string) (bool, error) {
	ok, _, err := e.RunQuery(query)
	return ok, err
}

// RunQuery is Run's richer sibling: it also returns the first solution's
// bindings for every variable named in query, keyed by surface spelling.
// cmd/botl's `run` subcommand uses this to print bindings the way a
// top-level query result is conventionally reported.
func (e *Engine) RunQuery(query string) (bool, map[string]vm.Cell, error) {
	goal, err := parser.ParseTerm([]byte(query), e.Store.Symbols)
	if err != nil {
		return false, nil, fmt.Errorf("engine: %w", err)
	}

	vars := compiler.QueryVariables(goal)
	pos := goal.Pos()

	e.queryGensym++
	name := e.Store.Symbols.Intern(fmt.Sprintf("$query_%d", e.queryGensym))

	headArgs := make([]ast.Term, len(vars))
	for i, v := range vars {
		headArgs[i] = ast.NewVar(v, pos)
	}
	var head ast.Term = ast.NewSym(name, pos)
	if len(headArgs) > 0 {
		head = ast.NewCall(name, headArgs, pos)
	}
	rule := ast.NewCall(ast.FunctorImplies, []ast.Term{head, goal}, pos)
	if err := e.Compiler.CompileTerm(rule); err != nil {
		return false, nil, fmt.Errorf("engine: %w", err)
	}

	ind := vm.Indicator{Name: name, Arity: len(vars)}
	args := make([]vm.Cell, len(vars))
	for i := range args {
		args[i] = vm.Unbound()
	}

	ok, err := e.Machine.Solve(context.Background(), ind, args)
	if err != nil || !ok {
		return false, nil, err
	}

	bindings := make(map[string]vm.Cell, len(vars))
	for i, v := range vars {
		bindings[v] = e.Machine.ArgCell(i)
	}
	return true, bindings, nil
}

// DefineGlobal declares name as a mutable global and sets its initial
// value, the programmatic counterpart to a global/1 declaration followed
// by set_global/2 (spec.md §6 "DefineGlobal(name, initial): global-variable
// lifecycle").
func (e *Engine) DefineGlobal(name string, initial vm.Cell) {
	e.Store.Globals.Declare(name)
	e.Store.Globals.Set(name, initial)
}

// Find returns the current value of global variable name, and whether it
// has been declared (spec.md §6 "Find(name): global-variable lifecycle").
func (e *Engine) Find(name string) (vm.Cell, bool) {
	return e.Store.Globals.Get(name)
}

// DefineTable creates an empty table predicate name/arity (spec.md §6
// "DefineTable(indicator): create a table predicate").
func (e *Engine) DefineTable(name string, arity int) *vm.Predicate {
	return e.Store.DefineTable(name, arity, nil)
}

// LoadTable reads a table predicate named name from the CSV file at path,
// with arity determined by its first row's column count (spec.md §6
// "LoadTable(path)... first row determines arity").
func (e *Engine) LoadTable(name, path string) (*vm.Predicate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: load table %s: %w", name, err)
	}
	first, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return nil, fmt.Errorf("engine: load table %s: %s is empty", name, path)
	}
	if err != nil {
		return nil, fmt.Errorf("engine: load table %s: %w", name, err)
	}
	p, err := e.Store.LoadTable(name, len(first), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return p, nil
}
