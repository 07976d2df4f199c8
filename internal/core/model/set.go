// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// ListSeparator is the separator used by the CSV exports for multi-valued
// columns such as cast, country and listed_in.
const ListSeparator = ", "

// StringSet is an unordered collection of distinct strings. It is used for
// every multi-valued attribute of a media record.
type StringSet map[string]struct{}

// NewStringSet creates a set holding the given values. Empty values are skipped.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// MakeSet converts a comma-separated column value into a set of its trimmed,
// non-empty elements.
//
// Inputs:
//   - value: The raw column value (e.g., "Actor X, Actor Y").
//
// Outputs:
//   - StringSet: The distinct elements of the column.
func MakeSet(value string) StringSet {
	s := make(StringSet)
	for _, part := range strings.Split(value, ",") {
		s.Add(part)
	}
	return s
}

// Add inserts a trimmed value into the set. Blank values are ignored.
func (s StringSet) Add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	s[value] = struct{}{}
}

// Union adds every element of other to the set.
func (s StringSet) Union(other StringSet) {
	for v := range other {
		s[v] = struct{}{}
	}
}

// Contains reports whether the exact value is a member of the set.
func (s StringSet) Contains(value string) bool {
	_, ok := s[value]
	return ok
}

// ContainsFold reports whether any member contains needle, ignoring case.
// An empty needle matches any non-empty set.
func (s StringSet) ContainsFold(needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	for v := range s {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// String renders the set the way the CSV exports do.
func (s StringSet) String() string {
	return strings.Join(s.Sorted(), ListSeparator)
}

// Clone returns an independent copy of the set.
func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	out.Union(s)
	return out
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array into the set.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}
