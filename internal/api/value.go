package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies which member of the JSON union a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is a dynamically typed JSON value. The zero Value is JSON null.
// Numbers keep their literal text so payloads round-trip unchanged.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  map[string]Value
}

// Fields is an open mapping of field name to arbitrary value. The server owns
// the schema; the client never validates it.
type Fields map[string]Value

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(i, 10))}
}

// Float wraps a float. NaN and infinities have no JSON form and become null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array wraps a list of values.
func Array(values ...Value) Value {
	arr := make([]Value, len(values))
	copy(arr, values)
	return Value{kind: KindArray, arr: arr}
}

// Object wraps a set of fields.
func Object(fields Fields) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: KindObject, obj: obj}
}

// Kind reports the union member held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean and whether v holds one.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string and whether v holds one.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the literal number and whether v holds one.
func (v Value) AsNumber() (json.Number, bool) { return v.num, v.kind == KindNumber }

// AsFloat converts a number to float64.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsInt converts a number to int64 when it is integral.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	i, err := v.num.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

// AsArray returns a copy of the elements and whether v is an array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out, true
}

// AsObject returns a copy of the fields and whether v is an object.
func (v Value) AsObject() (Fields, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	out := make(Fields, len(v.obj))
	for k, val := range v.obj {
		out[k] = val
	}
	return out, true
}

// Get returns the named member of an object value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	val, ok := v.obj[key]
	return val, ok
}

// Keys returns the sorted member names of an object value.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders v as compact JSON.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid: %v>", err)
	}
	return string(data)
}

// Equal reports whether two values hold the same JSON document.
func (v Value) Equal(other Value) bool {
	a, errA := v.MarshalJSON()
	b, errB := other.MarshalJSON()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		if !json.Valid([]byte(v.num)) {
			return nil, fmt.Errorf("invalid number %q", string(v.num))
		}
		return []byte(v.num), nil
	case KindString:
		return json.Marshal(v.str)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse decodes a JSON document into a Value.
func Parse(text string) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON([]byte(text)); err != nil {
		return Value{}, fmt.Errorf("parse value: %w", err)
	}
	return v, nil
}

// FromAny converts the output of encoding/json (or plain Go scalars, slices
// and maps) into a Value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case Fields:
		return Object(x), nil
	case bool:
		return Bool(x), nil
	case json.Number:
		return Value{kind: KindNumber, num: x}, nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case int32:
		return Int(int64(x)), nil
	case string:
		return String(x), nil
	case []any:
		arr := make([]Value, 0, len(x))
		for i, elem := range x {
			val, err := FromAny(elem)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			arr = append(arr, val)
		}
		return Value{kind: KindArray, arr: arr}, nil
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, elem := range x {
			val, err := FromAny(elem)
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", k, err)
			}
			obj[k] = val
		}
		return Value{kind: KindObject, obj: obj}, nil
	default:
		return Value{}, fmt.Errorf("unsupported type %T", raw)
	}
}

// ParseFields decodes a JSON object into Fields.
func ParseFields(text string) (Fields, error) {
	v, err := Parse(text)
	if err != nil {
		return nil, err
	}
	fields, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("parse fields: want object, got %s", v.Kind())
	}
	return fields, nil
}
