// Package dynpath write path: walk all tokens but the last, auto-creating
// missing containers, then assign at the final token. Containers are
// chosen by peeking at the next token: an index token needs a sequence,
// anything else gets a mapping.
package dynpath

import "fmt"

// Set assigns value at the location the path addresses under root,
// creating missing intermediate containers on the way, and returns the
// root for chaining. It never fails from the caller's perspective: on an
// internal error the (possibly partially mutated) root is returned as-is.
// A nil root is replaced by a fresh container fitting the first token, so
// the returned value must be used:
//
//	root = dynpath.Set(root, "items[0].total", 9.5)
//
// Set only creates absent containers and assigns the terminal target; it
// never deletes or reorders existing entries.
func Set(root any, path string, value any) any {
	rp := root
	tokens, err := Tokenize(path)
	if err != nil {
		return root
	}
	_ = setTokens(&rp, tokens, value)
	return rp
}

// SetWithOptions is Set with explicit options. With Strict set, the
// internal error kind is returned; the root may still carry mutations made
// before the failure point.
func SetWithOptions(root any, path string, value any, opts *SetOptions) (any, error) {
	rp := root
	tokens, err := Tokenize(path)
	if err == nil {
		err = setTokens(&rp, tokens, value)
	}
	if opts != nil && opts.Strict {
		return rp, err
	}
	return rp, nil
}

// setTokens walks the prefix of tokens, vivifying absent targets, and
// applies the last token as an assignment. rootp is updated when the root
// itself must be replaced (nil root, or a root slice grown in place). A
// panic out of a user-supplied member or container is recovered here and
// collapsed into ErrOperationFailed, keeping the public write surface
// total; mutation made before the panic point stays in place.
func setTokens(rootp *any, tokens []Token, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrOperationFailed, r)
		}
	}()

	if len(tokens) == 0 {
		return nil
	}

	current := *rootp
	// writeback stores a replacement for current into its parent slot.
	writeback := func(v any) { *rootp = v }

	if isAbsent(current) {
		current = freshContainer(tokens[0])
		writeback(current)
	}

	for i := 0; i < len(tokens)-1; i++ {
		tok := tokens[i]

		if tok.Kind == KindCall {
			next, err := invoke(current, tok.Name, tok.Args)
			if err != nil {
				return err
			}
			if isAbsent(next) {
				return fmt.Errorf("%w: after %s", ErrNotTraversable, tokenLabel(tok))
			}
			// A call result is a value, not a slot; nothing to write
			// back through.
			current, writeback = next, func(any) {}
			continue
		}

		child, err := applyToken(current, tok)
		if err != nil {
			return err
		}
		if isAbsent(child) {
			child = freshContainer(tokens[i+1])
			replaced, grew, err := assignToken(current, tok, child)
			if err != nil {
				return err
			}
			if grew {
				writeback(replaced)
				current = replaced
			}
		}

		parent, ptok := current, tok
		writeback = func(v any) {
			// The slot exists by now, so this cannot grow the parent.
			_, _, _ = assignToken(parent, ptok, v)
		}
		current = child
	}

	last := tokens[len(tokens)-1]
	if last.Kind == KindCall {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, tokenLabel(last))
	}
	replaced, grew, err := assignToken(current, last, value)
	if err != nil {
		return err
	}
	if grew {
		writeback(replaced)
	}
	return nil
}

// assignToken writes v at tok on container. The returned container differs
// from the input only when a sequence had to grow (grew reports that), in
// which case the caller stores it back into the parent slot.
func assignToken(container any, tok Token, v any) (any, bool, error) {
	switch tok.Kind {
	case KindProperty:
		return container, false, setMember(container, tok.Name, v)
	case KindIndex:
		if tok.Numeric {
			return setIndex(container, tok.Num, v)
		}
		return container, false, setMember(container, tok.Key, v)
	default:
		return container, false, fmt.Errorf("%w: %s", ErrInvalidTarget, tokenLabel(tok))
	}
}

// freshContainer picks the container shape a token needs to land on: a
// sequence for a numeric index, otherwise a mapping.
func freshContainer(next Token) any {
	if next.Kind == KindIndex && next.Numeric {
		return []any{}
	}
	return map[string]any{}
}
