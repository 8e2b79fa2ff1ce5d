package token

// A Token represents a lexical token of the surface syntax (§6).
type Token int8

//nolint:revive
const (
	ILLEGAL Token = iota
	EOF

	// tokens with values
	IDENT  // foo, bar, p_1 (atoms and declaration keywords)
	VAR    // X, Y, _Foo, _
	INT    // 123
	FLOAT  // 1.23e4
	STRING // "foo"

	// punctuation
	LPAREN // (
	RPAREN // )
	LBRACK // [
	RBRACK // ]
	DOT    // . (clause terminator)

	COMMA      // ,
	SEMI       // ;
	ARROW      // :-
	CUT        // !
	SLASH      // /
	COLON      // :
	SLASHGT    // />
	EQ         // =
	COLONCOLON // ::
	LT         // <
	GT         // >
	LE         // <=
	GE         // >=
	EQEQ       // ==
	NEQ        // \=
	PLUS       // +
	MINUS      // -
	STAR       // *

	maxToken
)

func (tok Token) String() string {
	if int(tok) >= 0 && int(tok) < len(tokenNames) && tokenNames[tok] != "" {
		return tokenNames[tok]
	}
	return "unknown token"
}

var tokenNames = [...]string{
	ILLEGAL:    "illegal token",
	EOF:        "end of file",
	IDENT:      "identifier",
	VAR:        "variable",
	INT:        "int literal",
	FLOAT:      "float literal",
	STRING:     "string literal",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACK:     "[",
	RBRACK:     "]",
	DOT:        ".",
	COMMA:      ",",
	SEMI:       ";",
	ARROW:      ":-",
	CUT:        "!",
	SLASH:      "/",
	COLON:      ":",
	SLASHGT:    "/>",
	EQ:         "=",
	COLONCOLON: "::",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	EQEQ:       "==",
	NEQ:        `\=`,
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
}

// ReservedNames are the declaration functors recognised by Pass 1 of the
// compiler (§4.5). They scan as ordinary IDENT atoms; the compiler, not the
// scanner, treats them specially when they head a top-level term.
var ReservedNames = map[string]bool{
	"function":          true,
	"table":             true,
	"require":           true,
	"global":             true,
	"report":            true,
	"struct":            true,
	"signature":         true,
	"trace":             true,
	"notrace":           true,
	"externally_called": true,
	"listing":           true,
}
