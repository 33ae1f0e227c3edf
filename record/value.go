package record

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
)

// Value is one of String, *Map or List.
type Value interface {
	isValue()
}

// String is a scalar record value.
type String string

// List is the data of an iteration block.
type List []*Map

func (String) isValue() {}
func (List) isValue()   {}
func (*Map) isValue()   {}

// Map is a mapping that remembers insertion order.
// Setting an existing key replaces its value in place.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Set assigns v to key.
func (m *Map) Set(key string, v Value) {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}

	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.vals[key] = v
}

// Get returns the value stored under key exactly.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}

	v, ok := m.vals[key]

	return v, ok
}

// Lookup resolves key exactly first, then as a dotted
// path through nested maps ("server.host").
func (m *Map) Lookup(key string) (Value, bool) {
	if v, ok := m.Get(key); ok {
		return v, true
	}

	if !strings.Contains(key, ".") {
		return nil, false
	}

	cur := m
	parts := strings.Split(key, ".")

	for idx, pa := range parts {
		v, ok := cur.Get(pa)
		if !ok {
			return nil, false
		}

		if idx == len(parts)-1 {
			return v, true
		}

		next, ok := v.(*Map)
		if !ok {
			return nil, false
		}

		cur = next
	}

	return nil, false
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}

	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// MarshalJSON writes the map as a JSON object in key
// order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for idx, key := range m.Keys() {
		if idx > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		vb, err := json.Marshal(m.vals[key])
		if err != nil {
			return nil, err
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Merge copies every top-level entry of src into dst,
// src winning on conflicts. A nil dst is left alone.
func Merge(dst *Map, src *Map) {
	if dst == nil {
		return
	}

	for _, key := range src.Keys() {
		v, _ := src.Get(key)
		dst.Set(key, v)
	}
}
