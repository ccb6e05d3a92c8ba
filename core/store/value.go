package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedValue is returned when a record field holds a JSON object or array.
var ErrUnsupportedValue = errors.New("unsupported field value")

// Kind identifies which member of the Value union is set.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
)

// Value is a single record field: a string, a number, or nothing.
// Numbers keep their literal text so documents round-trip unchanged.
type Value struct {
	kind Kind
	str  string
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value from a float.
func Number(f float64) Value {
	return Value{kind: KindNumber, str: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberLiteral returns a numeric value from a JSON number literal.
func NumberLiteral(n json.Number) Value {
	return Value{kind: KindNumber, str: n.String()}
}

// Absent returns the empty value.
func Absent() Value {
	return Value{}
}

// Kind reports which member is set.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether the value is null or missing.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// IsBlank reports whether the value is absent or a whitespace-only string.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindAbsent:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	default:
		return false
	}
}

// Text renders the value as text. Absent values render as "".
func (v Value) Text() string {
	return v.str
}

// Float returns the numeric value. ok is false for non-numbers.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Equal compares kind and literal text.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(v.str), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	val, err := valueFromToken(tok)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// ValueOf converts a Go value produced by a decoder or parser into a Value.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Absent(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case json.Number:
		return NumberLiteral(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Value{kind: KindNumber, str: strconv.Itoa(t)}, nil
	case int64:
		return Value{kind: KindNumber, str: strconv.FormatInt(t, 10)}, nil
	case bool:
		return String(strconv.FormatBool(t)), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
	}
}

func valueFromToken(tok json.Token) (Value, error) {
	if d, ok := tok.(json.Delim); ok {
		return Value{}, fmt.Errorf("%w: nested %s", ErrUnsupportedValue, d)
	}
	return ValueOf(tok)
}
