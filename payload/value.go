// Package payload models the decoded body of a daemon response. The body schema is
// defined by the caller, so the value is a tree of tagged variants rather than a struct.
package payload

import (
	"sort"
	"strconv"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a single node of a decoded payload. The zero value is Null.
//
// Values are immutable: accessors never expose the underlying storage.
type Value struct {
	kind Kind
	// str holds either a string or the literal representation of a number.
	str     string
	boolean bool
	arr     []Value
	obj     map[string]Value
}

func NewNull() Value {
	return Value{}
}

func NewBool(b bool) Value {
	return Value{kind: Bool, boolean: b}
}

// NewNumber makes a number out of its literal representation. The literal isn't validated.
func NewNumber(literal string) Value {
	return Value{kind: Number, str: literal}
}

func NewString(s string) Value {
	return Value{kind: String, str: s}
}

func NewArray(elems ...Value) Value {
	return Value{kind: Array, arr: elems}
}

func NewObject(fields map[string]Value) Value {
	if fields == nil {
		fields = make(map[string]Value)
	}

	return Value{kind: Object, obj: fields}
}

// Empty returns an empty object. This is what an absent body decodes into.
func Empty() Value {
	return NewObject(nil)
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == Null
}

// Get returns the field of an object. Calling it on non-object always reports
// the field as missing.
func (v Value) Get(key string) (Value, bool) {
	field, found := v.obj[key]
	return field, found
}

// Lookup descends through nested objects by the keys path.
func (v Value) Lookup(path ...string) (Value, bool) {
	for _, key := range path {
		var found bool
		if v, found = v.Get(key); !found {
			return Value{}, false
		}
	}

	return v, true
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	if i < 0 || i >= len(v.arr) {
		return Value{}, false
	}

	return v.arr[i], true
}

// Len returns the number of elements of an array or fields of an object. It's zero
// for any other kind.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	default:
		return 0
	}
}

// Keys returns the sorted field names of an object.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.obj))
	for key := range v.obj {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Elems returns a copy of array elements.
func (v Value) Elems() []Value {
	if v.kind != Array {
		return nil
	}

	return append([]Value(nil), v.arr...)
}

// Str returns the string and whether the value is a string at all.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == String
}

// StrField is a shortcut for Get followed by Str.
func (v Value) StrField(key string) (string, bool) {
	field, found := v.Get(key)
	if !found {
		return "", false
	}

	return field.Str()
}

func (v Value) Bool() (b, ok bool) {
	return v.boolean, v.kind == Bool
}

// Literal returns the number exactly as it was received.
func (v Value) Literal() (string, bool) {
	return v.str, v.kind == Number
}

func (v Value) Float64() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}

	f, err := strconv.ParseFloat(v.str, 64)
	return f, err == nil
}

// Int64 succeeds only if the number is an integer fitting into int64.
func (v Value) Int64() (int64, bool) {
	if v.kind != Number {
		return 0, false
	}

	i, err := strconv.ParseInt(v.str, 10, 64)
	return i, err == nil
}

// Interface converts the value into the conventional Go representation: map[string]any,
// []any, string, bool, nil, with numbers being float64.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.boolean
	case Number:
		f, _ := v.Float64()
		return f
	case String:
		return v.str
	case Array:
		elems := make([]any, len(v.arr))
		for i, elem := range v.arr {
			elems[i] = elem.Interface()
		}

		return elems
	case Object:
		fields := make(map[string]any, len(v.obj))
		for key, field := range v.obj {
			fields[key] = field.Interface()
		}

		return fields
	default:
		return nil
	}
}

// Equal compares two values deeply. Numbers are compared by their literals.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.boolean == other.boolean
	case Number, String:
		return v.str == other.str
	case Array:
		if len(v.arr) != len(other.arr) {
			return false
		}

		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}

		return true
	case Object:
		if len(v.obj) != len(other.obj) {
			return false
		}

		for key, field := range v.obj {
			otherField, found := other.obj[key]
			if !found || !field.Equal(otherField) {
				return false
			}
		}

		return true
	default:
		return false
	}
}
