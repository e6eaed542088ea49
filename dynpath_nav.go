package dynpath

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/match"
)

// The traversal engine dispatches against these capability interfaces
// first, so callers can expose their own types to path expressions without
// converting to maps and slices. Values that implement none of them fall
// back to the built-in adapters for native maps, slices, structs, funcs,
// and methods.

// Mapping is a string-keyed container navigable by property tokens.
type Mapping interface {
	Member(name string) (any, bool)
	SetMember(name string, value any)
}

// Sequence is an integer-indexed container navigable by index tokens.
type Sequence interface {
	Len() int
	At(i int) (any, bool)
	SetAt(i int, value any) bool
}

// Invocable is a member callable by function-call tokens.
type Invocable interface {
	Invoke(args []any) (any, error)
}

// member resolves a property read against v. A missing member is
// (Undefined, false), never an error; opacity is the caller's concern.
// Names containing '*' or '?' match mapping keys as wildcards in sorted
// key order, first match wins.
func member(v any, name string) (any, bool) {
	switch m := v.(type) {
	case Mapping:
		return m.Member(name)
	case map[string]any:
		if hasWildcard(name) {
			return wildcardLookup(mapKeys(m), func(k string) any { return m[k] }, name)
		}
		val, ok := m[name]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Undefined, false
		}
		return member(rv.Elem().Interface(), name)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Undefined, false
		}
		if hasWildcard(name) {
			keys := make([]string, 0, rv.Len())
			for _, k := range rv.MapKeys() {
				keys = append(keys, k.String())
			}
			return wildcardLookup(keys, func(k string) any {
				return rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()
			}, name)
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return Undefined, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		if f, ok := structField(rv, name); ok {
			return f.Interface(), true
		}
	}
	return Undefined, false
}

// index resolves a numeric index read against v. Negative indexes count
// from the end of a sequence. Mappings fall back to a member lookup on the
// decimal form of the index, and strings index to a one-rune substring.
func index(v any, i int) (any, bool) {
	switch s := v.(type) {
	case Sequence:
		if i < 0 {
			i += s.Len()
		}
		return s.At(i)
	case []any:
		if i < 0 {
			i += len(s)
		}
		if i < 0 || i >= len(s) {
			return Undefined, false
		}
		return s[i], true
	case Mapping, map[string]any:
		return member(v, strconv.Itoa(i))
	case string:
		runes := []rune(s)
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return Undefined, false
		}
		return string(runes[i]), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Undefined, false
		}
		return index(rv.Elem().Interface(), i)
	case reflect.Slice, reflect.Array:
		if i < 0 {
			i += rv.Len()
		}
		if i < 0 || i >= rv.Len() {
			return Undefined, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Map:
		return member(v, strconv.Itoa(i))
	}
	return Undefined, false
}

// invoke calls the member named name on v with args. Lookup order: an
// Invocable or func-typed member, then a method found by reflection under
// the exact name, then under its exported-case variant.
func invoke(v any, name string, args []any) (any, error) {
	if mem, ok := member(v, name); ok {
		if inv, ok := mem.(Invocable); ok {
			return inv.Invoke(args)
		}
		if mem != nil {
			if fn := reflect.ValueOf(mem); fn.Kind() == reflect.Func {
				return callFunc(fn, args)
			}
		}
	}
	if fn, ok := methodByName(v, name); ok {
		return callFunc(fn, args)
	}
	return nil, fmt.Errorf("%w: %q", ErrNotInvocable, name)
}

func methodByName(v any, name string) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	if m := rv.MethodByName(name); m.IsValid() {
		return m, true
	}
	if exported := exportedName(name); exported != name {
		if m := rv.MethodByName(exported); m.IsValid() {
			return m, true
		}
	}
	// Pointer receivers need an addressable value.
	if rv.Kind() != reflect.Pointer && !rv.CanAddr() {
		pv := reflect.New(rv.Type())
		pv.Elem().Set(rv)
		if m := pv.MethodByName(exportedName(name)); m.IsValid() {
			return m, true
		}
	}
	return reflect.Value{}, false
}

func callFunc(fn reflect.Value, args []any) (any, error) {
	t := fn.Type()
	numIn := t.NumIn()
	if t.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("%w: want at least %d args, have %d", ErrNotInvocable, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("%w: want %d args, have %d", ErrNotInvocable, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= numIn-1 {
			pt = t.In(numIn - 1).Elem()
		} else {
			pt = t.In(i)
		}
		av, err := convertArg(arg, pt)
		if err != nil {
			return nil, err
		}
		in[i] = av
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if err, ok := out[0].Interface().(error); ok {
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		if err, ok := out[len(out)-1].Interface().(error); ok && err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}

func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if isAbsent(arg) {
		return reflect.Zero(t), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(t) {
		return av, nil
	}
	if isNumericKind(av.Kind()) && isNumericKind(t.Kind()) {
		return av.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: argument %v not assignable to %s", ErrNotInvocable, arg, t)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// structField finds an exported field under name or its exported-case
// variant.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}
	if exported := exportedName(name); exported != name {
		if sf, ok := t.FieldByName(exported); ok && sf.IsExported() {
			return rv.FieldByIndex(sf.Index), true
		}
	}
	return reflect.Value{}, false
}

// exportedName upper-cases the first rune so "upper" finds "Upper".
func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func hasWildcard(name string) bool {
	return strings.ContainsAny(name, "*?")
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// wildcardLookup returns the value under the first key matching pattern.
// Keys are visited in sorted order so the result is deterministic.
func wildcardLookup(keys []string, get func(string) any, pattern string) (any, bool) {
	sort.Strings(keys)
	for _, k := range keys {
		if match.Match(k, pattern) {
			return get(k), true
		}
	}
	return Undefined, false
}

// setMember writes v under name on container. Unlike member it can fail:
// writing needs a concrete mapping (or settable struct field) to land on.
// A nil map reads as empty but is not writable, so it is rejected here
// rather than panicking in the assignment.
func setMember(container any, name string, v any) error {
	switch m := container.(type) {
	case Mapping:
		m.SetMember(name, v)
		return nil
	case map[string]any:
		if m == nil {
			return fmt.Errorf("%w: nil mapping", ErrNotTraversable)
		}
		m[name] = v
		return nil
	}

	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: %T", ErrNotTraversable, container)
		}
		if rv.IsNil() {
			return fmt.Errorf("%w: nil mapping", ErrNotTraversable)
		}
		ev, err := convertElem(v, rv.Type().Elem())
		if err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), ev)
		return nil
	case reflect.Pointer:
		if rv.IsNil() {
			return fmt.Errorf("%w: nil pointer", ErrNotTraversable)
		}
		if rv.Elem().Kind() == reflect.Struct {
			if f, ok := structField(rv.Elem(), name); ok && f.CanSet() {
				ev, err := convertElem(v, f.Type())
				if err != nil {
					return err
				}
				f.Set(ev)
				return nil
			}
		}
		return setMember(rv.Elem().Interface(), name, v)
	}
	return fmt.Errorf("%w: %T", ErrNotTraversable, container)
}

// setIndex writes v at position i in container. It returns the container,
// which is a freshly grown slice when i was past the end; grew tells the
// caller to store it back into the parent slot.
func setIndex(container any, i int, v any) (out any, grew bool, err error) {
	switch s := container.(type) {
	case Sequence:
		n := s.Len()
		if i < 0 {
			i += n
		}
		if i < 0 || !s.SetAt(i, v) {
			return container, false, fmt.Errorf("%w: index %d", ErrNotIndexable, i)
		}
		return container, false, nil
	case Mapping, map[string]any:
		return container, false, setMember(container, strconv.Itoa(i), v)
	case []any:
		if i < 0 {
			i += len(s)
			if i < 0 {
				return container, false, fmt.Errorf("%w: index %d", ErrNotIndexable, i-len(s))
			}
		}
		if i < len(s) {
			s[i] = v
			return s, false, nil
		}
		grown := make([]any, i+1)
		copy(grown, s)
		grown[i] = v
		return grown, true, nil
	}

	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Slice:
		n := rv.Len()
		if i < 0 {
			i += n
			if i < 0 {
				return container, false, fmt.Errorf("%w: index %d", ErrNotIndexable, i-n)
			}
		}
		ev, cerr := convertElem(v, rv.Type().Elem())
		if cerr != nil {
			return container, false, cerr
		}
		if i < n {
			rv.Index(i).Set(ev)
			return container, false, nil
		}
		grown := reflect.MakeSlice(rv.Type(), i+1, i+1)
		reflect.Copy(grown, rv)
		grown.Index(i).Set(ev)
		return grown.Interface(), true, nil
	case reflect.Map:
		return container, false, setMember(container, strconv.Itoa(i), v)
	}
	return container, false, fmt.Errorf("%w: %T", ErrNotIndexable, container)
}

func convertElem(v any, t reflect.Type) (reflect.Value, error) {
	if isAbsent(v) {
		return reflect.Zero(t), nil
	}
	ev := reflect.ValueOf(v)
	if ev.Type().AssignableTo(t) {
		return ev, nil
	}
	if isNumericKind(ev.Kind()) && isNumericKind(t.Kind()) {
		return ev.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %T value into %s", ErrNotTraversable, v, t)
}
