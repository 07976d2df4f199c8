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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains struct definitions that only live for
// the duration of an ingestion run or a search request and are never stored.
package model

// Row is a single raw line of a CSV export, keyed by column name and tagged
// with the service it was exported from.
type Row struct {
	Service StreamingService
	Fields  map[string]string
}

// Get returns the value of a column, or an empty string when the export
// does not carry that column.
func (r Row) Get(column string) string {
	return r.Fields[column]
}

// Criteria holds the optional search inputs of a query. An empty string or a
// zero year means the criterion was not supplied.
type Criteria struct {
	Actor    string `json:"actor,omitempty"`
	Category string `json:"category,omitempty"`
	Year     int    `json:"year,omitempty"`
}

// HasActor reports whether an actor criterion was supplied.
func (c Criteria) HasActor() bool { return c.Actor != "" }

// HasCategory reports whether a category criterion was supplied.
func (c Criteria) HasCategory() bool { return c.Category != "" }

// HasYear reports whether a release year criterion was supplied.
func (c Criteria) HasYear() bool { return c.Year != 0 }

// Count returns how many criteria were supplied.
func (c Criteria) Count() int {
	n := 0
	for _, set := range []bool{c.HasActor(), c.HasCategory(), c.HasYear()} {
		if set {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no criterion was supplied.
func (c Criteria) IsEmpty() bool {
	return c.Count() == 0
}

// ServiceCount is the number of catalog titles available on one service.
type ServiceCount struct {
	Service string `json:"service" bigquery:"streaming_service"`
	Titles  int    `json:"titles" bigquery:"titles"`
}
