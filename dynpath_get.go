// Package dynpath read path: tokenize, then walk the token sequence
// against the root. The public entry points are total; the internal walker
// keeps precise error kinds so strict mode and tests can observe them.
package dynpath

import "fmt"

// Get resolves a path expression against root. It never fails: any
// internal error (an absent intermediate, a call on a non-invocable
// member) resolves to an absent Result.
func Get(root any, path string) Result {
	v, err := evalPath(root, path)
	if err != nil || isAbsent(v) {
		return Result{Type: TypeUndefined, Val: Undefined}
	}
	return makeResult(v)
}

// GetWithDefault resolves a path expression against root, substituting
// def whenever the path does not resolve to a present value.
func GetWithDefault(root any, path string, def any) any {
	v, err := evalPath(root, path)
	if err != nil || isAbsent(v) {
		return def
	}
	return v
}

// GetWithOptions resolves a path expression with explicit options. With
// Strict set, the internal error kind is returned alongside the default
// instead of being collapsed.
func GetWithOptions(root any, path string, opts *GetOptions) (any, error) {
	v, err := evalPath(root, path)
	if err != nil || isAbsent(v) {
		var def any
		if opts != nil {
			def = opts.Default
		}
		if opts != nil && opts.Strict {
			return def, err
		}
		return def, nil
	}
	return v, nil
}

func evalPath(root any, path string) (any, error) {
	tokens, err := Tokenize(path)
	if err != nil {
		return nil, err
	}
	return walkTokens(root, tokens)
}

// walkTokens applies the token sequence to root. A missing member or
// out-of-range index yields Undefined and keeps walking (the next step
// short-circuits on it); only an absent intermediate or a failed call is
// an error. A panic out of a user-supplied member or container is
// recovered here and collapsed into ErrOperationFailed, keeping the
// public read surface total.
func walkTokens(root any, tokens []Token) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%w: %v", ErrOperationFailed, r)
		}
	}()

	current := root
	for _, tok := range tokens {
		if isAbsent(current) {
			return nil, fmt.Errorf("%w: before %s", ErrNotTraversable, tokenLabel(tok))
		}
		next, err := applyToken(current, tok)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func applyToken(current any, tok Token) (any, error) {
	switch tok.Kind {
	case KindProperty:
		v, _ := member(current, tok.Name)
		return v, nil
	case KindIndex:
		if tok.Numeric {
			v, _ := index(current, tok.Num)
			return v, nil
		}
		v, _ := member(current, tok.Key)
		return v, nil
	case KindCall:
		return invoke(current, tok.Name, tok.Args)
	default:
		return nil, fmt.Errorf("%w: unknown token kind %d", ErrTokenize, tok.Kind)
	}
}

func tokenLabel(tok Token) string {
	switch tok.Kind {
	case KindIndex:
		return "[" + tok.Key + "]"
	case KindCall:
		return tok.Name + "()"
	default:
		return tok.Name
	}
}
