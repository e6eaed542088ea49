package dynpath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// GetBytes resolves a path expression against a raw JSON document.
// Call-free paths are translated to gjson syntax and served without
// decoding the whole document; paths carrying call tokens decode the
// document and run the full engine. Invalid JSON resolves to an absent
// Result, matching Get's tolerance.
func GetBytes(doc []byte, path string) Result {
	tokens, err := Tokenize(path)
	if err != nil {
		return Result{Type: TypeUndefined, Val: Undefined}
	}
	if gpath, ok := bytesPath(tokens, true); ok {
		if !gjson.ValidBytes(doc) {
			return Result{Type: TypeUndefined, Val: Undefined}
		}
		res := gjson.GetBytes(doc, gpath)
		if !res.Exists() {
			return Result{Type: TypeUndefined, Val: Undefined}
		}
		return makeResult(res.Value())
	}

	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return Result{Type: TypeUndefined, Val: Undefined}
	}
	v, err := walkTokens(root, tokens)
	if err != nil || isAbsent(v) {
		return Result{Type: TypeUndefined, Val: Undefined}
	}
	return makeResult(v)
}

// SetBytes assigns value at the path inside a raw JSON document and
// returns the updated document. Assignment delegates to sjson, so it
// auto-creates missing containers with the same sequence/mapping
// discipline as Set. Paths carrying call tokens are rejected with
// ErrInvalidTarget: a call result is not an assignable location in a
// document either.
func SetBytes(doc []byte, path string, value any) ([]byte, error) {
	tokens, err := Tokenize(path)
	if err != nil {
		return doc, err
	}
	spath, ok := bytesPath(tokens, false)
	if !ok {
		return doc, fmt.Errorf("%w: %s", ErrInvalidTarget, path)
	}
	if len(doc) > 0 && !gjson.ValidBytes(doc) {
		return doc, ErrInvalidJSON
	}
	if isAbsent(value) {
		value = nil
	}
	return sjson.SetBytes(doc, spath, value)
}

// bytesPath translates a token sequence into gjson/sjson path syntax.
// Call tokens and negative indexes have no equivalent there, so they
// report !ok and the caller falls back to the engine (or rejects, for
// writes). Wildcard characters stay live on reads to match the engine's
// wildcard lookup; on writes every metacharacter is escaped so keys are
// literal.
func bytesPath(tokens []Token, wildcards bool) (string, bool) {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte('.')
		}
		switch tok.Kind {
		case KindProperty:
			b.WriteString(escapeJSONSegment(tok.Name, wildcards))
		case KindIndex:
			if tok.Numeric {
				if tok.Num < 0 {
					return "", false
				}
				b.WriteString(strconv.Itoa(tok.Num))
			} else {
				b.WriteString(escapeJSONSegment(tok.Key, wildcards))
			}
		default:
			return "", false
		}
	}
	return b.String(), true
}

func escapeJSONSegment(seg string, wildcards bool) string {
	var b strings.Builder
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		switch c {
		case '*', '?':
			if !wildcards {
				b.WriteByte('\\')
			}
		case '\\', '.', '|', '#', '@', ':':
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Format pretty-prints a JSON document with the default two-space indent.
func Format(doc []byte) []byte {
	return pretty.Pretty(doc)
}

// FormatWithIndent pretty-prints a JSON document with a custom indent.
// An empty indent minifies.
func FormatWithIndent(doc []byte, indent string) []byte {
	if indent == "" {
		return Ugly(doc)
	}
	opts := *pretty.DefaultOptions
	opts.Indent = indent
	return pretty.PrettyOptions(doc, &opts)
}

// Ugly strips all insignificant whitespace from a JSON document.
func Ugly(doc []byte) []byte {
	return pretty.Ugly(doc)
}
