package payload

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/indigo-web/dockersock/errors"
	json "github.com/json-iterator/go"
	pkgerrors "github.com/pkg/errors"
)

// numbers are kept as literals, so nothing is lost on int64 identifiers or huge sizes.
var api = json.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type numberLiteral interface {
	String() string
	Float64() (float64, error)
}

// Decode parses the body bytes as a UTF-8 JSON document. Empty (or whitespace-only) input
// results in an empty object. Any bytes remaining after the document are reported as an error.
func Decode(data []byte) (Value, error) {
	if len(bytes.Trim(data, " \t\r\n")) == 0 {
		return Empty(), nil
	}

	if !utf8.Valid(data) {
		return Value{}, errors.ErrInvalidUTF8
	}

	iter := api.BorrowIterator(data)
	defer api.ReturnIterator(iter)

	var raw any
	iter.ReadVal(&raw)
	if iter.Error != nil && iter.Error != io.EOF {
		return Value{}, iter.Error
	}

	// the iterator hits io.EOF once nothing but whitespace follows the document
	if iter.WhatIsNext(); iter.Error != io.EOF {
		return Value{}, errors.ErrTrailingData
	}

	return fromInterface(raw)
}

// Unmarshal decodes the body bytes directly into a model, as encoding/json would do.
func Unmarshal(data []byte, model any) error {
	return api.Unmarshal(data, model)
}

// Marshal encodes a model, so it can be passed as a request body.
func Marshal(model any) ([]byte, error) {
	return api.Marshal(model)
}

func fromInterface(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(v), nil
	case string:
		return NewString(v), nil
	case numberLiteral:
		if !validNumber(v.String()) {
			return Value{}, pkgerrors.WithMessagef(errors.ErrBadNumber, "got %s", v.String())
		}

		return NewNumber(v.String()), nil
	case float64:
		return NewNumber(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case []any:
		elems := make([]Value, len(v))
		for i, elem := range v {
			var err error
			if elems[i], err = fromInterface(elem); err != nil {
				return Value{}, err
			}
		}

		return NewArray(elems...), nil
	case map[string]any:
		fields := make(map[string]Value, len(v))
		for key, field := range v {
			value, err := fromInterface(field)
			if err != nil {
				return Value{}, err
			}

			fields[key] = value
		}

		return NewObject(fields), nil
	default:
		return Value{}, fmt.Errorf("unexpected decoded type %T", raw)
	}
}

// validNumber matches the literal against the JSON number grammar:
// -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func validNumber(literal string) bool {
	i := 0
	if i < len(literal) && literal[i] == '-' {
		i++
	}

	switch {
	case i < len(literal) && literal[i] == '0':
		i++
	case i < len(literal) && literal[i] >= '1' && literal[i] <= '9':
		i = skipDigits(literal, i)
	default:
		return false
	}

	if i < len(literal) && literal[i] == '.' {
		end := skipDigits(literal, i+1)
		if end == i+1 {
			return false
		}

		i = end
	}

	if i < len(literal) && (literal[i] == 'e' || literal[i] == 'E') {
		i++
		if i < len(literal) && (literal[i] == '+' || literal[i] == '-') {
			i++
		}

		end := skipDigits(literal, i)
		if end == i {
			return false
		}

		i = end
	}

	return i == len(literal)
}

func skipDigits(literal string, from int) int {
	for from < len(literal) && literal[from] >= '0' && literal[from] <= '9' {
		from++
	}

	return from
}

// MarshalJSON renders the value back into JSON. Object fields are sorted and numbers are
// written exactly as they were received.
func (v Value) MarshalJSON() ([]byte, error) {
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)

	v.write(stream)
	if stream.Error != nil {
		return nil, stream.Error
	}

	return append([]byte(nil), stream.Buffer()...), nil
}

func (v Value) write(stream *json.Stream) {
	switch v.kind {
	case Null:
		stream.WriteNil()
	case Bool:
		stream.WriteBool(v.boolean)
	case Number:
		stream.WriteRaw(v.str)
	case String:
		stream.WriteString(v.str)
	case Array:
		stream.WriteArrayStart()
		for i, elem := range v.arr {
			if i > 0 {
				stream.WriteMore()
			}

			elem.write(stream)
		}
		stream.WriteArrayEnd()
	case Object:
		stream.WriteObjectStart()
		for i, key := range v.Keys() {
			if i > 0 {
				stream.WriteMore()
			}

			stream.WriteObjectField(key)
			v.obj[key].write(stream)
		}
		stream.WriteObjectEnd()
	}
}

// String returns the JSON representation.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s: %s>", v.kind, err)
	}

	return string(data)
}
