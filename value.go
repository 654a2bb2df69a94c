package enval

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind identifies which member of the inferred-value union a Value holds.
type Kind int

// Value kinds. The zero Kind is KindUndefined, so the zero Value reads as absent.
const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
	// KindOther marks pass-through input whose Go type has no place in the union,
	// such as structs, channels or pointers.
	KindOther
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "bool",
	KindNumber:    "number",
	KindString:    "string",
	KindObject:    "object",
	KindArray:     "array",
	KindOther:     "other",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// UndefinedValue is the native form of an undefined Value. It is distinct
// from nil, which is the native form of null.
type UndefinedValue struct{}

// Value is the result of inference: a string, number, boolean, null,
// undefined, object or array. Values built from non-textual input keep the
// exact input and report it through Interface unchanged.
//
// Value is immutable by convention. Object and array payloads are shared with
// whoever produced them, so callers that need isolation should copy them.
type Value struct {
	raw  any
	kind Kind
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, raw: s}
}

// Number returns a number Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, raw: f}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, raw: b}
}

// Null returns the null Value.
func Null() Value {
	return Value{kind: KindNull}
}

// Undefined returns the undefined Value. It equals the zero Value.
func Undefined() Value {
	return Value{}
}

// Object returns an object Value wrapping m.
func Object(m map[string]any) Value {
	return Value{kind: KindObject, raw: m}
}

// Array returns an array Value wrapping s.
func Array(s []any) Value {
	return Value{kind: KindArray, raw: s}
}

// Of classifies a Go value without inferring anything from its content.
// Strings stay strings; Of never parses them. This is how non-textual input
// passes through Infer.
func Of(raw any) Value {
	switch x := raw.(type) {
	case Value:
		return x
	case nil:
		return Null()
	case UndefinedValue:
		return Undefined()
	case bool:
		return Value{kind: KindBool, raw: x}
	case string:
		return Value{kind: KindString, raw: x}
	case map[string]any:
		return Value{kind: KindObject, raw: x}
	case []any:
		return Value{kind: KindArray, raw: x}
	}

	switch reflect.ValueOf(raw).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Value{kind: KindNumber, raw: raw}
	case reflect.Bool:
		return Value{kind: KindBool, raw: raw}
	case reflect.String:
		return Value{kind: KindString, raw: raw}
	case reflect.Map:
		return Value{kind: KindObject, raw: raw}
	case reflect.Slice, reflect.Array:
		return Value{kind: KindArray, raw: raw}
	default:
		return Value{kind: KindOther, raw: raw}
	}
}

// Kind reports which member of the union v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsUndefined reports whether v is undefined.
func (v Value) IsUndefined() bool {
	return v.kind == KindUndefined
}

// IsNullish reports whether v is null or undefined.
func (v Value) IsNullish() bool {
	return v.kind == KindNull || v.kind == KindUndefined
}

// Str returns the string held by v.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	if s, ok := v.raw.(string); ok {
		return s, true
	}
	return reflect.ValueOf(v.raw).String(), true
}

// Float returns the number held by v as a float64. Pass-through integers and
// float32 values are converted.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if f, ok := v.raw.(float64); ok {
		return f, true
	}
	rv := reflect.ValueOf(v.raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Boolean returns the boolean held by v.
func (v Value) Boolean() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	if b, ok := v.raw.(bool); ok {
		return b, true
	}
	return reflect.ValueOf(v.raw).Bool(), true
}

// Map returns the object held by v. It reports false for pass-through maps
// whose type is not map[string]any; use Interface for those.
func (v Value) Map() (map[string]any, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	m, ok := v.raw.(map[string]any)
	return m, ok
}

// Slice returns the array held by v. It reports false for pass-through
// slices whose type is not []any; use Interface for those.
func (v Value) Slice() ([]any, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	s, ok := v.raw.([]any)
	return s, ok
}

// Interface returns the native Go form of v: nil for null, UndefinedValue{}
// for undefined, and the held value otherwise. Pass-through input comes back
// exactly as it was given.
func (v Value) Interface() any {
	switch v.kind {
	case KindUndefined:
		return UndefinedValue{}
	case KindNull:
		return nil
	default:
		return v.raw
	}
}

// Equal reports whether v and other hold the same kind and content.
// Numbers compare by float64 value, so a pass-through int equals the
// inferred number with the same value.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindUndefined, KindNull:
		return true
	case KindNumber:
		a, _ := v.Float()
		b, _ := other.Float()
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	case KindString:
		a, _ := v.Str()
		b, _ := other.Str()
		return a == b
	default:
		return reflect.DeepEqual(v.raw, other.raw)
	}
}

// String renders v for diagnostics. Strings are returned bare; objects and
// arrays render as JSON when they can.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindString:
		s, _ := v.Str()
		return s
	case KindNumber:
		if f, ok := v.raw.(float64); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return fmt.Sprint(v.raw)
	case KindObject, KindArray:
		if data, err := json.Marshal(v.raw); err == nil {
			return string(data)
		}
		return fmt.Sprint(v.raw)
	default:
		return fmt.Sprint(v.raw)
	}
}

// MarshalJSON implements json.Marshaler. Undefined encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNullish() {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}
