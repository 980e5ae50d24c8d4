package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind tags the type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindList
)

// Value is one node of a parsed response tree.
type Value struct {
	obj  Data
	str  string // string value or number literal
	list []Value
	kind Kind
	b    bool
}

// Kind returns the node type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null or absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String renders scalars as text. Objects and lists render as "".
func (v Value) String() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Int returns the value as an integer. Numeric strings are accepted.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindNumber, KindString:
		s := strings.TrimSpace(v.str)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Bool returns the value as a boolean. "true" and "1" strings are true.
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString, KindNumber:
		s := strings.TrimSpace(v.str)
		return s == "1" || strings.EqualFold(s, "true")
	}
	return false
}

// Object returns the nested object, or empty Data for non-objects.
func (v Value) Object() Data {
	if v.kind != KindObject {
		return Data{}
	}
	return v.obj
}

// List returns a copy of the list elements, or nil for non-lists.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return slices.Clone(v.list)
}

// Any converts the value back to plain Go types.
// Numbers are returned as json.Number.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return json.Number(v.str)
	case KindBool:
		return v.b
	case KindObject:
		return v.obj.Map()
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Any()
		}
		return out
	default:
		return nil
	}
}

// Data is a read-only, string-keyed response tree.
// The zero value is an empty tree.
type Data struct {
	m map[string]Value
}

// NewData builds a tree from plain Go values.
func NewData(m map[string]any) Data {
	if len(m) == 0 {
		return Data{}
	}
	d := Data{m: make(map[string]Value, len(m))}
	for k, v := range m {
		d.m[k] = valueOf(v)
	}
	return d
}

// Len returns the number of top-level keys.
func (d Data) Len() int { return len(d.m) }

// IsEmpty reports whether the tree has no keys.
func (d Data) IsEmpty() bool { return len(d.m) == 0 }

// Keys returns the top-level keys in sorted order.
func (d Data) Keys() []string {
	return slices.Sorted(maps.Keys(d.m))
}

// Lookup resolves a key. An exact top-level key wins; otherwise the key is
// treated as a dotted path into nested objects ("data.access_token").
func (d Data) Lookup(key string) (Value, bool) {
	if v, ok := d.m[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return Value{}, false
	}
	cur := d
	parts := strings.Split(key, ".")
	for i, part := range parts {
		v, ok := cur.m[part]
		if !ok {
			return Value{}, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		if v.kind != KindObject {
			return Value{}, false
		}
		cur = v.obj
	}
	return Value{}, false
}

// Has reports whether key resolves to a non-null value.
func (d Data) Has(key string) bool {
	v, ok := d.Lookup(key)
	return ok && !v.IsNull()
}

// String returns the scalar at key rendered as text, or "".
func (d Data) String(key string) string {
	v, _ := d.Lookup(key)
	return v.String()
}

// Int returns the integer at key, or 0.
func (d Data) Int(key string) int64 {
	v, _ := d.Lookup(key)
	n, _ := v.Int()
	return n
}

// Bool returns the boolean at key, or false.
func (d Data) Bool(key string) bool {
	v, _ := d.Lookup(key)
	return v.Bool()
}

// Object returns the nested object at key, or empty Data.
func (d Data) Object(key string) Data {
	v, _ := d.Lookup(key)
	return v.Object()
}

// Objects returns the object elements of the list at key.
// Non-object elements are skipped.
func (d Data) Objects(key string) []Data {
	v, _ := d.Lookup(key)
	if v.kind != KindList {
		return nil
	}
	out := make([]Data, 0, len(v.list))
	for _, item := range v.list {
		if item.kind == KindObject {
			out = append(out, item.obj)
		}
	}
	return out
}

// Strings returns the scalar elements of the list at key rendered as text.
// A scalar at key yields a one-element slice.
func (d Data) Strings(key string) []string {
	v, ok := d.Lookup(key)
	if !ok {
		return nil
	}
	switch v.kind {
	case KindList:
		out := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if item.kind != KindObject && item.kind != KindList && item.kind != KindNull {
				out = append(out, item.String())
			}
		}
		return out
	case KindString, KindNumber, KindBool:
		return []string{v.String()}
	}
	return nil
}

// FirstString returns the first non-empty string among keys.
func (d Data) FirstString(keys ...string) string {
	for _, k := range keys {
		if s := d.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Map converts the tree back to plain Go values.
func (d Data) Map() map[string]any {
	out := make(map[string]any, len(d.m))
	for k, v := range d.m {
		out[k] = v.Any()
	}
	return out
}

// Merge returns a new tree with the keys of other layered over d.
func (d Data) Merge(other Data) Data {
	out := Data{m: make(map[string]Value, len(d.m)+len(other.m))}
	maps.Copy(out.m, d.m)
	maps.Copy(out.m, other.m)
	return out
}

// MarshalJSON implements json.Marshaler.
func (d Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Data) UnmarshalJSON(b []byte) error {
	parsed, err := decodeJSONObject(b)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func decodeJSONObject(b []byte) (Data, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Data{}, err
	}
	switch raw := raw.(type) {
	case map[string]any:
		return NewData(raw), nil
	case nil:
		return Data{}, nil
	default:
		return Data{}, fmt.Errorf("top-level json value is %T, want object", raw)
	}
}

func valueOf(v any) Value {
	switch v := v.(type) {
	case nil:
		return Value{kind: KindNull}
	case Value:
		return v
	case Data:
		return Value{kind: KindObject, obj: v}
	case string:
		return Value{kind: KindString, str: v}
	case json.Number:
		return Value{kind: KindNumber, str: v.String()}
	case bool:
		return Value{kind: KindBool, b: v}
	case float64:
		return Value{kind: KindNumber, str: strconv.FormatFloat(v, 'f', -1, 64)}
	case float32:
		return Value{kind: KindNumber, str: strconv.FormatFloat(float64(v), 'f', -1, 32)}
	case int:
		return Value{kind: KindNumber, str: strconv.Itoa(v)}
	case int32:
		return Value{kind: KindNumber, str: strconv.FormatInt(int64(v), 10)}
	case int64:
		return Value{kind: KindNumber, str: strconv.FormatInt(v, 10)}
	case uint64:
		return Value{kind: KindNumber, str: strconv.FormatUint(v, 10)}
	case map[string]any:
		return Value{kind: KindObject, obj: NewData(v)}
	case []any:
		list := make([]Value, len(v))
		for i := range v {
			list[i] = valueOf(v[i])
		}
		return Value{kind: KindList, list: list}
	case []map[string]any:
		list := make([]Value, len(v))
		for i := range v {
			list[i] = Value{kind: KindObject, obj: NewData(v[i])}
		}
		return Value{kind: KindList, list: list}
	case []string:
		list := make([]Value, len(v))
		for i := range v {
			list[i] = Value{kind: KindString, str: v[i]}
		}
		return Value{kind: KindList, list: list}
	default:
		return Value{kind: KindString, str: fmt.Sprint(v)}
	}
}
