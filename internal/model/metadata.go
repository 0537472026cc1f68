package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Metadata is an ordered string to string mapping attached to an object.
// Lookups are exact and case-sensitive; enumeration follows insertion order.
// A Metadata is not safe for concurrent mutation.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata creates an empty container.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// NewMetadataFrom creates a container seeded with pairs, applied in order.
func NewMetadataFrom(pairs ...[2]string) *Metadata {
	m := NewMetadata()
	for _, p := range pairs {
		m.Set(p[0], p[1])
	}
	return m
}

// MetadataFromRecord builds a container from a record returned by a remote
// store. Stores canonicalise or lowercase user-metadata keys, so any key that
// matches a conventional key case-insensitively is restored to the
// conventional spelling. Keys are added in sorted order since map iteration
// order carries no meaning.
func MetadataFromRecord(record map[string]string) *Metadata {
	m := NewMetadata()
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		m.Set(canonicalKey(k), record[k])
	}
	return m
}

func canonicalKey(key string) string {
	for _, ck := range conventionalKeys {
		if strings.EqualFold(ck, key) {
			return ck
		}
	}
	return key
}

func (m *Metadata) init() {
	if m.values == nil {
		m.values = make(map[string]string)
	}
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key. Updating an existing key keeps its position.
func (m *Metadata) Set(key, value string) {
	m.init()
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key if present.
func (m *Metadata) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Clear removes every entry.
func (m *Metadata) Clear() {
	m.keys = nil
	m.values = make(map[string]string)
}

func (m *Metadata) Keys() []string {
	return slices.Clone(m.keys)
}

func (m *Metadata) Values() []string {
	out := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// Pairs returns every entry as a [key, value] pair in insertion order.
func (m *Metadata) Pairs() [][2]string {
	out := make([][2]string, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, [2]string{k, m.values[k]})
	}
	return out
}

func (m *Metadata) Len() int {
	return len(m.keys)
}

func (m *Metadata) IsEmpty() bool {
	return len(m.keys) == 0
}

func (m *Metadata) ContainsKey(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *Metadata) ContainsValue(value string) bool {
	for _, v := range m.values {
		if v == value {
			return true
		}
	}
	return false
}

func (m *Metadata) ContainsPair(key, value string) bool {
	v, ok := m.values[key]
	return ok && v == value
}

// Record exports the entries as a plain map, suitable for transport headers.
func (m *Metadata) Record() map[string]string {
	out := make(map[string]string, len(m.keys))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (m *Metadata) Clone() *Metadata {
	c := NewMetadata()
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// MarshalJSON encodes the entries as an array of [key, value] pairs.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Pairs())
}

// UnmarshalJSON decodes an array of [key, value] pairs.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var pairs [][]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	m.Clear()
	for i, p := range pairs {
		if len(p) != 2 {
			return fmt.Errorf("metadata pair %d: expected 2 elements, got %d", i, len(p))
		}
		m.Set(p[0], p[1])
	}
	return nil
}
