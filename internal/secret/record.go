// Package secret defines the flat key/value record that every storage type
// resolves to, plus the JSON and env file codecs used for display, editing
// and file-backed storage.
package secret

import "sort"

// Record is a flat ordered mapping from string keys to string values. It is
// the canonical in-memory representation of one secret's contents. Nesting is
// rejected at parse time; the terminal engine treats values as opaque text.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Get returns the value for key and whether the key exists.
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set stores a value, preserving insertion order for new keys.
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Delete removes a key. Removing an absent key is a no-op.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return len(r.keys)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := NewRecord()
	for _, k := range r.keys {
		c.Set(k, r.values[k])
	}
	return c
}

// Subset returns a new record containing only the given keys, in the order
// they appear in the receiver. Unknown keys are ignored.
func (r *Record) Subset(keys []string) *Record {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	s := NewRecord()
	for _, k := range r.keys {
		if want[k] {
			s.Set(k, r.values[k])
		}
	}
	return s
}

// Merge sets every key of other on the receiver, keeping the receiver's key
// order for keys that already exist and appending new ones.
func (r *Record) Merge(other *Record) {
	for _, k := range other.keys {
		r.Set(k, other.values[k])
	}
}

// Equal reports whether two records hold the same keys in the same order
// with the same values.
func (r *Record) Equal(other *Record) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k {
			return false
		}
		if r.values[k] != other.values[k] {
			return false
		}
	}
	return true
}

// SortKeys re-orders the record's keys lexicographically. Used by providers
// whose backing store has no inherent order (e.g. cluster secret maps).
func (r *Record) SortKeys() {
	sort.Strings(r.keys)
}
