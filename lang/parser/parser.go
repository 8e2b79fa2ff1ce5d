// Package parser implements the recursive-descent reader that turns surface
// syntax (spec.md §6) into ast.Term trees for the compiler to consume.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/scanner"
	"github.com/rzubek/botl/lang/symbol"
	"github.com/rzubek/botl/lang/token"
)

// ErrorList collects every error encountered while scanning or parsing a
// source buffer. It implements Unwrap() []error so callers can use
// errors.Is/As across the whole batch.
type ErrorList []string

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0]
	default:
		return fmt.Sprintf("%s (and %d more errors)", el[0], len(el)-1)
	}
}

func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, msg := range el {
		errs[i] = errors.New(msg)
	}
	return errs
}

// ParseProgram parses src in full as a sequence of clauses (facts and
// rules), each terminated by a DOT. The symbol table used to intern atoms
// and functors defaults to symbol.Default() when table is nil.
func ParseProgram(src []byte, table *symbol.Table) ([]ast.Term, error) {
	if table == nil {
		table = symbol.Default()
	}
	var p parser
	p.table = table
	p.init(src)

	var clauses []ast.Term
	for p.tok != token.EOF {
		clauses = append(clauses, p.parseClause())
	}
	if len(p.errors) > 0 {
		return clauses, p.errors
	}
	return clauses, nil
}

// ParseTerm parses a single term from src, not expecting a terminating DOT.
// It is used by callers (e.g. the REPL, engine.Engine.Run) that want to
// parse one goal at a time.
func ParseTerm(src []byte, table *symbol.Table) (ast.Term, error) {
	if table == nil {
		table = symbol.Default()
	}
	var p parser
	p.table = table
	p.init(src)

	t := p.parseBody()
	if p.tok != token.EOF {
		p.errorExpected(p.val.Pos, "end of input")
	}
	if len(p.errors) > 0 {
		return t, p.errors
	}
	return t, nil
}

type parser struct {
	table   *symbol.Table
	scanner scanner.Scanner
	errors  ErrorList

	tok token.Token
	val token.Value

	// vars maps a clause-local variable name to its shared *ast.Var node, so
	// that repeated occurrences of the same name within one clause refer to
	// one node (spec.md §3 "Variable").
	vars map[string]*ast.Var
}

func (p *parser) init(src []byte) {
	p.scanner.Init(src, p.errors.add)
	p.vars = make(map[string]*ast.Var)
	p.advance()
}

func (el *ErrorList) add(pos token.Pos, msg string) {
	*el = append(*el, fmt.Sprintf("%s: %s", pos, msg))
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

var errPanicMode = errors.New("parse error")

func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}
	p.errorExpected(pos, describeTokens(toks))
	panic(errPanicMode)
}

func describeTokens(toks []token.Token) string {
	var sb strings.Builder
	for i, tok := range toks {
		if i > 0 {
			sb.WriteString(" or ")
		}
		sb.WriteString(tok.String())
	}
	return sb.String()
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.add(pos, msg)
}

func (p *parser) errorExpected(pos token.Pos, want string) {
	p.error(pos, fmt.Sprintf("expected %s, found %s", want, p.tok))
}

// parseClause parses one top-level "Head." or "Head :- Body." clause and
// consumes the terminating DOT. On a malformed clause, it records an error
// and skips tokens up to and including the next DOT (or EOF), so that one
// bad clause does not abort parsing of the rest of the program.
func (p *parser) parseClause() (t ast.Term) {
	clauseVars := p.vars
	p.vars = make(map[string]*ast.Var)
	defer func() {
		p.vars = clauseVars
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			for p.tok != token.DOT && p.tok != token.EOF {
				p.advance()
			}
			if p.tok == token.DOT {
				p.advance()
			}
			t = nil
		}
	}()

	t = p.parseBody()
	p.expect(token.DOT)
	return t
}

// parseBody parses a full goal expression: disjunction of conjunctions of
// simple goals, including the ':-' implication operator at the outermost
// level.
func (p *parser) parseBody() ast.Term {
	return p.parseSubExpr(0)
}

// parseArg parses a single call argument or list element: an arithmetic/
// comparison expression, excluding the body-level ':-', ';' and ','
// operators (spec.md §6's operator table reserves those for clause/goal
// structure, not argument position).
func (p *parser) parseArg() ast.Term {
	return p.parseSubExpr(priorityComma)
}

type prio struct{ left, right int }

const (
	priorityArrow = 1
	priorityDisj  = 2
	priorityComma = 3
	priorityCmp   = 4
	priorityAdd   = 5
	priorityMul   = 6
)

var binopPriority = map[token.Token]prio{
	token.ARROW: {priorityArrow, priorityArrow},
	token.SEMI:  {priorityDisj, priorityDisj},
	token.COMMA: {priorityComma, priorityComma},
	token.EQ:    {priorityCmp, priorityCmp},
	token.EQEQ:  {priorityCmp, priorityCmp},
	token.NEQ:   {priorityCmp, priorityCmp},
	token.LT:    {priorityCmp, priorityCmp},
	token.GT:    {priorityCmp, priorityCmp},
	token.LE:    {priorityCmp, priorityCmp},
	token.GE:    {priorityCmp, priorityCmp},
	token.PLUS:  {priorityAdd, priorityAdd},
	token.MINUS: {priorityAdd, priorityAdd},
	token.STAR:  {priorityMul, priorityMul},
	token.SLASH: {priorityMul, priorityMul},
	token.COLON:   {priorityMul, priorityMul},
	token.SLASHGT: {priorityMul, priorityMul},
}

// parseSubExpr implements precedence climbing (spec.md §6's operator table,
// ordered loosest-to-tightest: ':-', ';', ',', comparisons, '+'/'-', and
// '*'/'/' together with the EL connectives ':' and '/>').
func (p *parser) parseSubExpr(floor int) ast.Term {
	var left ast.Term
	if p.tok == token.MINUS {
		pos := p.expect(token.MINUS)
		right := p.parseSubExpr(priorityMul)
		left = ast.NewCall(p.table.Intern("-"), []ast.Term{right}, pos)
	} else {
		left = p.parsePrimary()
	}

	for {
		bp, ok := binopPriority[p.tok]
		if !ok || bp.left <= floor {
			break
		}
		op := p.tok
		pos := p.val.Pos
		p.advance()
		right := p.parseSubExpr(bp.right)
		left = ast.NewCall(p.table.Intern(op.String()), []ast.Term{left, right}, pos)
	}
	return left
}

func (p *parser) parsePrimary() ast.Term {
	pos := p.val.Pos
	switch p.tok {
	case token.VAR:
		name := p.val.Raw
		p.advance()
		if name == "_" {
			return ast.NewVar("_", pos)
		}
		if v, ok := p.vars[name]; ok {
			return v
		}
		v := ast.NewVar(name, pos)
		p.vars[name] = v
		return v

	case token.INT:
		v := p.val.Int
		p.advance()
		return ast.NewInt(v, pos)

	case token.FLOAT:
		v := p.val.Float
		p.advance()
		return ast.NewFloat(v, pos)

	case token.STRING:
		v := p.val.String
		p.advance()
		return ast.NewStr(v, pos)

	case token.CUT:
		p.advance()
		return ast.NewSym(p.table.Intern("!"), pos)

	case token.IDENT:
		name := p.val.String
		p.advance()
		return p.parseIdentTail(name, pos)

	case token.LPAREN:
		p.advance()
		t := p.parseBody()
		p.expect(token.RPAREN)
		return t

	case token.LBRACK:
		return p.parseListLiteral()

	default:
		p.errorExpected(pos, "a term")
		panic(errPanicMode)
	}
}

// parseIdentTail parses the argument list (if any) following an atom/functor
// name already consumed.
func (p *parser) parseIdentTail(name string, pos token.Pos) ast.Term {
	sym := p.table.Intern(name)
	if p.tok != token.LPAREN {
		return ast.NewSym(sym, pos)
	}
	p.advance()
	var args []ast.Term
	if p.tok != token.RPAREN {
		args = append(args, p.parseArg())
		for p.tok == token.COMMA {
			p.advance()
			args = append(args, p.parseArg())
		}
	}
	p.expect(token.RPAREN)
	if len(args) == 0 {
		return ast.NewSym(sym, pos)
	}
	return ast.NewCall(sym, args, pos)
}

// parseListLiteral parses a '[' a, b, c ']' aggregate literal, desugared
// into a call to the reserved "$array" functor (spec.md §4.4's Array(n)
// F-VM aggregate opcode is emitted by the compiler from this functor).
func (p *parser) parseListLiteral() ast.Term {
	pos := p.expect(token.LBRACK)
	sym := p.table.Intern("$array")
	if p.tok == token.RBRACK {
		p.advance()
		return ast.NewSym(sym, pos)
	}
	args := []ast.Term{p.parseArg()}
	for p.tok == token.COMMA {
		p.advance()
		args = append(args, p.parseArg())
	}
	p.expect(token.RBRACK)
	return ast.NewCall(sym, args, pos)
}
