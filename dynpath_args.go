package dynpath

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseArguments splits a raw argument-list string into its top-level
// comma-separated fields and parses each one with ParseLiteral. A comma
// only terminates a field when no quote is open and bracket/paren depth is
// zero; otherwise it is part of the field. Quote mode opens on an
// unescaped '"' or '\'' and closes on the matching unescaped same
// character (escape = immediately preceding backslash). Empty or
// whitespace-only input yields no arguments.
func ParseArguments(raw string) []any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var args []any
	var buf strings.Builder
	var quote byte
	parens, brackets := 0, 0

	flush := func() {
		args = append(args, ParseLiteral(buf.String()))
		buf.Reset()
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quote != 0:
			buf.WriteByte(c)
			if c == quote && raw[i-1] != '\\' {
				quote = 0
			}
		case c == '"' || c == '\'':
			if i > 0 && raw[i-1] == '\\' {
				buf.WriteByte(c)
				break
			}
			quote = c
			buf.WriteByte(c)
		case c == '(':
			parens++
			buf.WriteByte(c)
		case c == ')':
			parens--
			buf.WriteByte(c)
		case c == '[':
			brackets++
			buf.WriteByte(c)
		case c == ']':
			brackets--
			buf.WriteByte(c)
		case c == ',' && parens == 0 && brackets == 0:
			flush()
		default:
			buf.WriteByte(c)
		}
	}
	if strings.TrimSpace(buf.String()) != "" {
		flush()
	}

	return args
}

// ParseLiteral converts one raw argument field into a typed value. It is
// total: input matching no recognized literal shape comes back verbatim as
// a trimmed string. Recognition order, first match wins: quoted string,
// JSON array/object, number, true/false, null, undefined, raw string.
// Quote stripping does not unescape the inner text.
func ParseLiteral(field string) any {
	s := strings.TrimSpace(field)
	if s == "" {
		return ""
	}

	if len(s) >= 2 {
		open, last := s[0], s[len(s)-1]
		if (open == '"' && last == '"') || (open == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
		if (open == '[' && last == ']') || (open == '{' && last == '}') {
			if gjson.Valid(s) {
				return gjson.Parse(s).Value()
			}
			return s
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	case "undefined":
		return Undefined
	}
	return s
}
