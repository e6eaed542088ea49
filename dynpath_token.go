package dynpath

import (
	"strconv"
	"strings"
)

// TokenKind identifies the shape of one path segment
type TokenKind uint8

const (
	// KindProperty is a bare identifier or dotted segment: "a" in "a.b"
	KindProperty TokenKind = iota
	// KindIndex is bracketed access: "[0]" or "[key]"
	KindIndex
	// KindCall is a call-shaped segment: "name(arg1, arg2)"
	KindCall
)

// Token is one parsed segment of a path expression. Tokens are produced in
// left-to-right order and are immutable once created; a path string maps to
// exactly one token sequence.
type Token struct {
	Kind TokenKind

	// Name is the property or function name (KindProperty, KindCall).
	Name string

	// Key is the raw bracket content; it is the lookup key when the
	// content did not parse as a base-10 integer (KindIndex).
	Key string

	// Num is the integer index when Numeric is true (KindIndex).
	Num     int
	Numeric bool

	// Args holds the parsed call arguments (KindCall).
	Args []any
}

// Tokenize scans a path string into its ordered token sequence. The scan is
// a single left-to-right pass: '.' closes the current property, "[...]"
// becomes an index token whose key type is decided by a numeric parse of
// the full bracket content, and "name(...)" becomes a call token whose
// content is handed to ParseArguments. A backslash escapes the following
// character into the current property name.
//
// Tokenize is deliberately permissive: an unterminated '[' or '(' consumes
// the remainder of the string as index or argument content instead of
// failing, and the error return is reserved for internal invariant
// violations (see ErrTokenize). Bracket and paren depth counting is not
// quote-aware; only argument splitting is.
func Tokenize(path string) ([]Token, error) {
	var tokens []Token
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			tokens = append(tokens, Token{Kind: KindProperty, Name: buf.String()})
			buf.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '\\':
			if i+1 < len(path) {
				i++
				buf.WriteByte(path[i])
			} else {
				buf.WriteByte(c)
			}
		case '.':
			flush()
		case '[':
			flush()
			content, next := scanDelimited(path, i, '[', ']')
			tokens = append(tokens, indexToken(content))
			i = next - 1
		case '(':
			name := buf.String()
			buf.Reset()
			content, next := scanDelimited(path, i, '(', ')')
			tokens = append(tokens, Token{Kind: KindCall, Name: name, Args: ParseArguments(content)})
			i = next - 1
		default:
			buf.WriteByte(c)
		}
	}
	flush()

	return tokens, nil
}

// scanDelimited collects the content between path[open] and its matching
// close delimiter, counting nested pairs. It returns the enclosed
// substring and the position just past the closer. An unterminated pair
// consumes the remainder of the string.
func scanDelimited(path string, start int, open, closer byte) (string, int) {
	depth := 1
	for i := start + 1; i < len(path); i++ {
		switch path[i] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return path[start+1 : i], i + 1
			}
		}
	}
	return path[start+1:], len(path)
}

// indexToken decides the key type of bracket content once, at tokenize
// time. Content that fully parses as a base-10 integer carries a numeric
// key (so "[007]" indexes position 7); anything else stays a string key.
func indexToken(content string) Token {
	trimmed := strings.TrimSpace(content)
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Token{Kind: KindIndex, Key: trimmed, Num: int(n), Numeric: true}
	}
	return Token{Kind: KindIndex, Key: trimmed}
}

// Path is a pre-tokenized path held by the caller. Compiling once and
// reusing avoids re-scanning the string on hot call sites; there is no
// process-wide cache behind it.
type Path struct {
	tokens   []Token
	original string
}

// Compile tokenizes a path for reuse across many roots.
func Compile(path string) (*Path, error) {
	tokens, err := Tokenize(path)
	if err != nil {
		return nil, err
	}
	return &Path{tokens: tokens, original: path}, nil
}

// MustCompile is like Compile but panics on error. Tokenization of any
// string currently succeeds, so this exists for symmetry with future
// stricter modes.
func MustCompile(path string) *Path {
	p, err := Compile(path)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original path string.
func (p *Path) String() string { return p.original }

// Tokens returns a copy of the token sequence.
func (p *Path) Tokens() []Token {
	out := make([]Token, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// Get evaluates the compiled path against root.
func (p *Path) Get(root any) Result {
	v, err := walkTokens(root, p.tokens)
	if err != nil || isAbsent(v) {
		return Result{Type: TypeUndefined, Val: Undefined}
	}
	return makeResult(v)
}

// GetWithDefault evaluates the compiled path against root, substituting
// def when the path does not resolve.
func (p *Path) GetWithDefault(root, def any) any {
	v, err := walkTokens(root, p.tokens)
	if err != nil || isAbsent(v) {
		return def
	}
	return v
}

// Set assigns value at the compiled path under root and returns the root.
func (p *Path) Set(root any, value any) any {
	rp := root
	_ = setTokens(&rp, p.tokens, value)
	return rp
}
