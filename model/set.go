package model

import (
	"encoding/json"
	"sort"
)

// StringSet is a set of strings that marshals to a sorted JSON array,
// matching the persisted file format for document, section and form sets
type StringSet map[string]bool

// NewStringSet creates a set from the given values
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = true
	}
	return s
}

// Add inserts a value into the set
func (s StringSet) Add(v string) {
	s[v] = true
}

// Contains reports whether the set holds v
func (s StringSet) Contains(v string) bool {
	return s[v]
}

// Union adds all values of other into the set
func (s StringSet) Union(other StringSet) {
	for v := range other {
		s[v] = true
	}
}

// Values returns the set contents as a sorted slice
func (s StringSet) Values() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Clone returns an independent copy of the set
func (s StringSet) Clone() StringSet {
	clone := make(StringSet, len(s))
	for v := range s {
		clone[v] = true
	}
	return clone
}

// MarshalJSON encodes the set as a sorted array
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes the set from an array
func (s *StringSet) UnmarshalJSON(b []byte) error {
	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}
