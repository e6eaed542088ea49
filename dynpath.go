// Package dynpath provides tolerant path-expression access to arbitrary
// nested Go values. A single path string such as "a.b[0].c(x,\"y\")"
// addresses a location inside a graph of maps, slices, structs, and
// callable members; reads degrade to a default value when structure is
// missing, and writes auto-create the intermediate containers a path
// needs.
// Created by dhawalhost (2026-08-31 09:14:22)
package dynpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// Common errors for path operations. Get and Set never propagate these to
// the caller; they surface through GetWithOptions/SetWithOptions in strict
// mode and from the compiled-path helpers.
var (
	ErrTokenize        = errors.New("tokenize: internal invariant violated")
	ErrNotTraversable  = errors.New("path traverses a non-container value")
	ErrNotIndexable    = errors.New("index target is not a sequence")
	ErrNotInvocable    = errors.New("call target is not invocable")
	ErrInvalidTarget   = errors.New("call result is not an assignable location")
	ErrOperationFailed = errors.New("operation failed")
	ErrInvalidJSON     = errors.New("invalid json document")
)

// Undefined is the absent value. ParseLiteral returns it for the literal
// "undefined", missing members evaluate to it, and traversal treats it the
// same as a missing value. It is distinct from nil, which represents an
// explicit null.
var Undefined = undefined{}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// isAbsent reports whether v terminates traversal (null or undefined).
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(undefined)
	return ok
}

// ValueType represents the type of a resolved value
type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeString
	TypeNumber
	TypeBoolean
	TypeObject
	TypeArray
	TypeOther
)

// Result represents the result of a read operation
type Result struct {
	Type ValueType
	Val  any
}

// makeResult classifies v into a Result.
func makeResult(v any) Result {
	return Result{Type: classify(v), Val: v}
}

func classify(v any) ValueType {
	switch v.(type) {
	case nil:
		return TypeNull
	case undefined:
		return TypeUndefined
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return TypeNumber
	case []any:
		return TypeArray
	case map[string]any:
		return TypeObject
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map, reflect.Struct:
		return TypeObject
	case reflect.String:
		return TypeString
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.Pointer:
		if rv.IsNil() {
			return TypeNull
		}
		return classify(rv.Elem().Interface())
	default:
		return TypeOther
	}
}

// Exists returns true if the path resolved to a present value
func (r Result) Exists() bool {
	return r.Type != TypeUndefined
}

// Value returns the resolved value as-is (nil for null, Undefined for absent)
func (r Result) Value() any {
	return r.Val
}

// String returns the value as a string
func (r Result) String() string {
	switch r.Type {
	case TypeString:
		s, _ := asString(r.Val)
		return s
	case TypeNumber:
		f, _ := asFloat(r.Val)
		return strconv.FormatFloat(f, 'f', -1, 64)
	case TypeBoolean:
		b, _ := asBool(r.Val)
		return strconv.FormatBool(b)
	case TypeNull:
		return "null"
	case TypeArray, TypeObject:
		raw, err := json.Marshal(r.Val)
		if err != nil {
			return fmt.Sprint(r.Val)
		}
		return string(raw)
	case TypeOther:
		return fmt.Sprint(r.Val)
	default:
		return ""
	}
}

// Int returns the value as an int64
func (r Result) Int() int64 {
	switch r.Type {
	case TypeNumber:
		f, _ := asFloat(r.Val)
		return int64(f)
	case TypeString:
		s, _ := asString(r.Val)
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	case TypeBoolean:
		if b, _ := asBool(r.Val); b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Float returns the value as a float64
func (r Result) Float() float64 {
	switch r.Type {
	case TypeNumber:
		f, _ := asFloat(r.Val)
		return f
	case TypeString:
		s, _ := asString(r.Val)
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case TypeBoolean:
		if b, _ := asBool(r.Val); b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Bool returns the value as a bool
func (r Result) Bool() bool {
	switch r.Type {
	case TypeBoolean:
		b, _ := asBool(r.Val)
		return b
	case TypeNumber:
		f, _ := asFloat(r.Val)
		return f != 0
	case TypeString:
		s, _ := asString(r.Val)
		b, err := strconv.ParseBool(s)
		if err != nil {
			return s != "" && s != "0" && s != "false"
		}
		return b
	default:
		return false
	}
}

// Array returns the value as a []any, or nil if it is not a sequence
func (r Result) Array() []any {
	if r.Type != TypeArray {
		return nil
	}
	if s, ok := r.Val.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(r.Val)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Map returns the value as a map[string]any, or nil if it is not a mapping
func (r Result) Map() map[string]any {
	if r.Type != TypeObject {
		return nil
	}
	if m, ok := r.Val.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(r.Val)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil
	}
	out := make(map[string]any, rv.Len())
	for _, k := range rv.MapKeys() {
		out[k.String()] = rv.MapIndex(k).Interface()
	}
	return out
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func asBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

// asFloat converts any native numeric kind to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// GetOptions represents additional options for read operations
type GetOptions struct {
	// Default is returned whenever the path does not resolve to a
	// present value.
	Default any

	// Strict surfaces the internal error kind instead of collapsing it
	// into the default value. Intended for tests and diagnostics.
	Strict bool
}

// SetOptions represents additional options for write operations
type SetOptions struct {
	// Strict surfaces the internal error kind instead of swallowing it.
	// The root may still have been partially mutated before the failure
	// point.
	Strict bool
}
