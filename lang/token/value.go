package token

// Value holds the literal payload that accompanies a Token returned by the
// scanner: the raw source text plus whichever typed field is relevant for
// that token's kind.
type Value struct {
	Raw    string  // the token's exact source spelling
	Pos    Pos     // start position
	Int    int64   // populated when Token == INT
	Float  float32 // populated when Token == FLOAT
	String string  // populated when Token == STRING (unescaped) or IDENT/VAR (== Raw)
}
