package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	// KindInvalid is the zero Value; map lookups for absent parameters
	// yield it, and every accessor reports false for it.
	KindInvalid ValueKind = iota
	// KindString is a string literal.
	KindString
	// KindNumber is a numeric literal.
	KindNumber
	// KindBool is a boolean literal.
	KindBool
	// KindSequence is an ordered list of values.
	KindSequence
	// KindMapping is a name-keyed mapping of values.
	KindMapping
	// KindPlaceholder stands for a non-literal expression that was not
	// evaluated; it preserves the source expression for traceability.
	KindPlaceholder
)

// Value is a tagged variant for extracted call parameters.
// Extraction pattern-matches on source node kind and produces exactly one
// variant, so downstream code never needs reflection over arbitrary types.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	seq  []Value
	m    map[string]Value
}

// StringValue creates a string literal value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue creates a numeric literal value.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue creates a boolean literal value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// SequenceValue creates an ordered sequence value.
func SequenceValue(items ...Value) Value { return Value{kind: KindSequence, seq: items} }

// MappingValue creates a mapping value.
func MappingValue(m map[string]Value) Value { return Value{kind: KindMapping, m: m} }

// PlaceholderValue creates a placeholder for a named variable reference.
func PlaceholderValue(name string) Value { return Value{kind: KindPlaceholder, str: name} }

// OpaqueValue creates a placeholder for an expression with no usable name.
func OpaqueValue() Value { return Value{kind: KindPlaceholder} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string literal and whether the value holds one.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric literal and whether the value holds one.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean literal and whether the value holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Seq returns the sequence items and whether the value holds a sequence.
func (v Value) Seq() ([]Value, bool) { return v.seq, v.kind == KindSequence }

// Map returns the mapping and whether the value holds one.
func (v Value) Map() (map[string]Value, bool) { return v.m, v.kind == KindMapping }

// IsPlaceholder reports whether the value is an unevaluated expression.
func (v Value) IsPlaceholder() bool { return v.kind == KindPlaceholder }

// Text renders the value as display text. Placeholders render as
// "<variable:name>" (or "<complex_expression>" when unnamed) so they can
// flow through conversion without being mistaken for literal content.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindSequence:
		out := "["
		for i, item := range v.seq {
			if i > 0 {
				out += ", "
			}
			out += item.Text()
		}
		return out + "]"
	case KindMapping:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := "{"
		for i, k := range keys {
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%s: %s", k, v.m[k].Text())
		}
		return out + "}"
	case KindPlaceholder:
		if v.str == "" {
			return "<complex_expression>"
		}
		return "<variable:" + v.str + ">"
	default:
		return ""
	}
}

// MarshalJSON renders the value as its natural JSON shape.
// Placeholders become their display string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindSequence:
		if v.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.seq)
	case KindMapping:
		if v.m == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.m)
	default:
		return json.Marshal(v.Text())
	}
}

// UnmarshalJSON reconstructs a variant from its JSON shape.
// Strings stay strings; placeholder provenance is not recovered.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw any) Value {
	switch t := raw.(type) {
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return StringValue(t.String())
		}
		return NumberValue(f)
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, fromAny(item))
		}
		return SequenceValue(items...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[k] = fromAny(item)
		}
		return MappingValue(m)
	default:
		return OpaqueValue()
	}
}
