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
// This file, `media.go`, contains the media record shared by every data
// source (in-memory catalog, SQL tables, BigQuery) and every presentation
// adapter (CLI, web pages, JSON API).
package model

import (
	"github.com/google/uuid"
)

// StreamingService names the service a catalog entry was exported from.
type StreamingService string

// The four services whose exports make up the combined catalog.
const (
	Netflix     StreamingService = "Netflix"
	AmazonPrime StreamingService = "Amazon Prime"
	DisneyPlus  StreamingService = "Disney+"
	Hulu        StreamingService = "Hulu"
)

// AllServices lists the supported services in ingestion order.
var AllServices = []StreamingService{Netflix, AmazonPrime, DisneyPlus, Hulu}

// Media represents a single movie or show and all of its associated information.
// Multi-valued attributes are sets; Services holds every streaming service on
// which the title is available once duplicate titles have been merged.
type Media struct {
	Id          string    `json:"id"`
	ShowId      string    `json:"show_id"`
	MediaType   string    `json:"type"`
	Title       string    `json:"title"`
	Director    StringSet `json:"director"`
	Cast        StringSet `json:"cast"`
	Country     StringSet `json:"country"`
	DateAdded   string    `json:"date_added"`
	ReleaseYear int       `json:"release_year"`
	Rating      string    `json:"rating"`
	Duration    string    `json:"duration"`
	Categories  StringSet `json:"listed_in"`
	Description string    `json:"description"`
	Services    StringSet `json:"streaming_services"`
}

// NewMedia creates a media record for the given title. The ID is a UUIDv5
// hash of the title so the same title always maps to the same ID, whichever
// source it was loaded from.
//
// Inputs:
//   - title: The title of the movie or show.
//
// Outputs:
//   - *Media: A media record with its ID set and every set field initialized.
func NewMedia(title string) *Media {
	return &Media{
		Id:         MediaID(title),
		Title:      title,
		Director:   make(StringSet),
		Cast:       make(StringSet),
		Country:    make(StringSet),
		Categories: make(StringSet),
		Services:   make(StringSet),
	}
}

// MediaID returns the stable identifier for a title.
func MediaID(title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(title)).String()
}

// Merge folds another record for the same title into m. Scalar attributes keep
// their first-seen value (filled in only when empty); set attributes are unioned,
// which is how a title exported by several services ends up with all of them.
func (m *Media) Merge(other *Media) {
	m.Services.Union(other.Services)
	m.Director.Union(other.Director)
	m.Cast.Union(other.Cast)
	m.Country.Union(other.Country)
	m.Categories.Union(other.Categories)
	if m.ShowId == "" {
		m.ShowId = other.ShowId
	}
	if m.MediaType == "" {
		m.MediaType = other.MediaType
	}
	if m.DateAdded == "" {
		m.DateAdded = other.DateAdded
	}
	if m.ReleaseYear == 0 {
		m.ReleaseYear = other.ReleaseYear
	}
	if m.Rating == "" {
		m.Rating = other.Rating
	}
	if m.Duration == "" {
		m.Duration = other.Duration
	}
	if m.Description == "" {
		m.Description = other.Description
	}
}

// Clone returns a deep copy of the record.
func (m *Media) Clone() *Media {
	out := *m
	out.Director = m.Director.Clone()
	out.Cast = m.Cast.Clone()
	out.Country = m.Country.Clone()
	out.Categories = m.Categories.Clone()
	out.Services = m.Services.Clone()
	return &out
}
