package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindScalar is a leaf string value.
	KindScalar Kind = iota

	// KindMapping is an ordered key/value mapping with unique keys.
	KindMapping

	// KindSequence is an ordered list of values.
	KindSequence
)

// Value is the normalized representation of a decoded request body.
// It is a tagged variant over scalar strings, ordered mappings, and
// sequences. The body decoder produces Value trees and the classifier
// consumes them; nothing retains a Value beyond a single request.
//
// Design decision: We use an explicit tagged variant rather than
// interface{} plus runtime type switches because the classifier's
// recursion is easier to reason about (and to test) when the set of
// shapes is closed. Mapping keys preserve insertion order so that
// classification output is deterministic for a given input.
type Value struct {
	kind     Kind
	scalar   string
	keys     []string
	children map[string]Value
	items    []Value
}

// NewScalar returns a scalar Value holding the given text.
func NewScalar(text string) Value {
	return Value{kind: KindScalar, scalar: text}
}

// NewMapping returns an empty mapping Value.
func NewMapping() Value {
	return Value{kind: KindMapping, children: make(map[string]Value)}
}

// NewSequence returns a sequence Value holding the given items.
func NewSequence(items ...Value) Value {
	return Value{kind: KindSequence, items: items}
}

// Kind returns the variant held by this Value.
func (v Value) Kind() Kind { return v.kind }

// Text returns the scalar text. It returns an empty string for
// non-scalar values.
func (v Value) Text() string { return v.scalar }

// Keys returns the mapping keys in insertion order.
func (v Value) Keys() []string { return v.keys }

// Get returns the child value for the given mapping key.
func (v Value) Get(key string) (Value, bool) {
	child, ok := v.children[key]
	return child, ok
}

// Items returns the sequence members in order.
func (v Value) Items() []Value { return v.items }

// Len returns the number of mapping entries or sequence members.
// It returns 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindMapping:
		return len(v.keys)
	case KindSequence:
		return len(v.items)
	default:
		return 0
	}
}

// Set stores a child under the given key, preserving insertion order.
// Setting an existing key replaces the value without changing its position.
// Set panics if the receiver is not a mapping; mappings are only built by
// the decoder, so a misuse here is a programming error, not input error.
func (v *Value) Set(key string, child Value) {
	if v.kind != KindMapping {
		panic("model: Set called on non-mapping value")
	}
	if _, exists := v.children[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.children[key] = child
}

// Append adds an item to a sequence.
func (v *Value) Append(item Value) {
	if v.kind != KindSequence {
		panic("model: Append called on non-sequence value")
	}
	v.items = append(v.items, item)
}

// FromJSON parses a JSON document into a Value tree.
//
// Numbers are preserved verbatim as scalars (no float round-tripping),
// booleans become "true"/"false", and null becomes "null" so that the
// classifier's junk filter can discard them uniformly. Object key order
// is preserved, which encoding/json's map decoding would lose; we walk
// the token stream instead.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}

	// Reject trailing garbage after the first document.
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("unexpected data after JSON document")
	}

	return v, nil
}

// decodeValue decodes the next complete value from the token stream.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.Set(key, child)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return m, nil
		case '[':
			seq := NewSequence()
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				seq.Append(item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return seq, nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return NewScalar(t), nil
	case json.Number:
		return NewScalar(t.String()), nil
	case bool:
		return NewScalar(strconv.FormatBool(t)), nil
	case nil:
		return NewScalar("null"), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}
