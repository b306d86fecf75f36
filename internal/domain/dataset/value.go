package dataset

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind tags the scalar type held by a Value or declared by a column.
type Kind uint8

// Supported kinds. KindNull only ever describes a missing value; columns
// are declared with one of the other kinds.
const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Numeric reports whether values of this kind can be summed.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Value is an immutable tagged scalar. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	obj  map[string]float64
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Int wraps an integer.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String wraps a string.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Bool wraps a boolean.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// Object wraps a key -> number mapping. The map is copied.
func Object(m map[string]float64) Value {
	return Value{kind: KindObject, obj: maps.Clone(nonNil(m))}
}

func nonNil(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt returns v as an integer. Floats are truncated; other kinds yield 0.
func (v Value) AsInt() int64 {
	switch v.kind {
	case KindInt, KindBool:
		return v.i
	case KindFloat:
		return int64(v.f)
	default:
		return 0
	}
}

// AsFloat returns v as a float. Non-numeric kinds yield 0.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		return 0
	}
}

// AsString returns the string payload, or a textual rendering for other kinds.
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNull:
		return ""
	default:
		return v.key()[2:]
	}
}

// AsBool returns the boolean payload; other kinds yield false.
func (v Value) AsBool() bool { return v.kind == KindBool && v.i == 1 }

// AsObject returns a copy of the object payload, or nil for other kinds.
func (v Value) AsObject() map[string]float64 {
	if v.kind != KindObject {
		return nil
	}
	return maps.Clone(v.obj)
}

// Equal reports whether v and o have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindObject {
		return maps.Equal(v.obj, o.obj)
	}
	return v.i == o.i && v.f == o.f && v.s == o.s
}

// Interface returns the Go value carried by v (nil for null).
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBool:
		return v.i == 1
	case KindObject:
		return maps.Clone(v.obj)
	default:
		return nil
	}
}

// MarshalJSON encodes v as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// key renders v into a string that is unique per (kind, payload). It is used
// for grouping and join indexes.
func (v Value) key() string {
	var b strings.Builder
	b.WriteByte(byte('0' + v.kind))
	b.WriteByte(':')
	switch v.kind {
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		b.WriteString(v.s)
	case KindBool:
		b.WriteString(strconv.FormatBool(v.i == 1))
	case KindObject:
		for i, k := range slices.Sorted(maps.Keys(v.obj)) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte('=')
			b.WriteString(strconv.FormatFloat(v.obj[k], 'g', -1, 64))
		}
	}
	return b.String()
}

// compare orders two non-null values of the same column kind.
func compare(a, b Value) int {
	switch a.kind {
	case KindInt, KindBool:
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	case KindFloat:
		switch {
		case a.f < b.f:
			return -1
		case a.f > b.f:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(a.s, b.s)
	default:
		return 0
	}
}

// coerce converts v into a value acceptable for a column of kind k.
// Integers widen into float columns; nulls fit every column.
func coerce(k Kind, v Value) (Value, bool) {
	switch {
	case v.kind == KindNull, v.kind == k:
		return v, true
	case k == KindFloat && v.kind == KindInt:
		return Float(float64(v.i)), true
	default:
		return Value{}, false
	}
}
