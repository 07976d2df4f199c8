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

// Package services contains the business logic for interacting with data sources.
// This file, `source.go`, defines the `DataSource` contract shared by the
// in-memory catalog, the SQL databases and BigQuery, and the dispatch that
// both the command line and the web interface use to run a search.
package services

import (
	"context"
	"errors"
	"sort"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
)

var (
	// ErrNotFound is returned when a title or ID does not exist.
	ErrNotFound = errors.New("media not found")
	// ErrNoCriteria is returned when a search supplies no criterion.
	ErrNoCriteria = errors.New("at least one of actor, category or year is required")
)

// DataSource answers the catalog queries. Lists of media are ordered by
// release year, newest first, then by title, and hold one record per title.
type DataSource interface {
	// MediaByActor returns titles with a cast member whose name contains actor, ignoring case.
	MediaByActor(ctx context.Context, actor string) ([]*model.Media, error)
	// MediaByCategory returns titles listed in a category containing category, ignoring case.
	MediaByCategory(ctx context.Context, category string) ([]*model.Media, error)
	// MediaLaterThan returns titles released in or after year.
	MediaLaterThan(ctx context.Context, year int) ([]*model.Media, error)
	// MediaByAdvancedFilter returns titles matching every supplied criterion.
	MediaByAdvancedFilter(ctx context.Context, criteria model.Criteria) ([]*model.Media, error)
	// AllCategories returns every distinct category, sorted.
	AllCategories(ctx context.Context) ([]string, error)
	// AllActors returns every distinct cast member, sorted.
	AllActors(ctx context.Context) ([]string, error)
	// AllTitles returns every title, HTML-unescaped and without line breaks.
	AllTitles(ctx context.Context) ([]string, error)
	// MediaByTitle returns the record whose title matches, ignoring case.
	MediaByTitle(ctx context.Context, title string) (*model.Media, error)
	// MediaByID returns the record with the given ID.
	MediaByID(ctx context.Context, id string) (*model.Media, error)
	// Stats returns the number of titles available on each service.
	Stats(ctx context.Context) ([]model.ServiceCount, error)
	// Close releases the source's resources.
	Close() error
}

// Search runs a search against ds. A single criterion is answered by its
// dedicated query, several by the advanced filter.
//
// Inputs:
//   - ctx: The request context.
//   - ds: The data source to query.
//   - criteria: The search criteria.
//
// Outputs:
//   - []*model.Media: The matching records.
//   - error: ErrNoCriteria when no criterion is supplied, or the source's error.
func Search(ctx context.Context, ds DataSource, criteria model.Criteria) ([]*model.Media, error) {
	switch {
	case criteria.IsEmpty():
		return nil, ErrNoCriteria
	case criteria.Count() > 1:
		return ds.MediaByAdvancedFilter(ctx, criteria)
	case criteria.HasActor():
		return ds.MediaByActor(ctx, criteria.Actor)
	case criteria.HasCategory():
		return ds.MediaByCategory(ctx, criteria.Category)
	default:
		return ds.MediaLaterThan(ctx, criteria.Year)
	}
}

// SortByRelease orders media by release year, newest first, then by title.
func SortByRelease(media []*model.Media) {
	sort.SliceStable(media, func(i, j int) bool {
		if media[i].ReleaseYear != media[j].ReleaseYear {
			return media[i].ReleaseYear > media[j].ReleaseYear
		}
		return media[i].Title < media[j].Title
	})
}

// streamRecord is one row of the stream_data table: a single service's
// export of a title, with multi-valued columns still comma-separated.
type streamRecord struct {
	ShowId      string `bigquery:"show_id"`
	MediaType   string `bigquery:"media_type"`
	Title       string `bigquery:"title"`
	Director    string `bigquery:"director"`
	Cast        string `bigquery:"media_cast"`
	Country     string `bigquery:"country"`
	DateAdded   string `bigquery:"date_added"`
	ReleaseYear int64  `bigquery:"release_year"`
	Rating      string `bigquery:"rating"`
	Duration    string `bigquery:"duration"`
	Category    string `bigquery:"category"`
	Description string `bigquery:"description"`
	Service     string `bigquery:"streaming_service"`
}

func (r *streamRecord) toMedia() *model.Media {
	m := model.NewMedia(r.Title)
	m.ShowId = r.ShowId
	m.MediaType = r.MediaType
	m.Director = model.MakeSet(r.Director)
	m.Cast = model.MakeSet(r.Cast)
	m.Country = model.MakeSet(r.Country)
	m.DateAdded = r.DateAdded
	m.ReleaseYear = int(r.ReleaseYear)
	m.Rating = r.Rating
	m.Duration = r.Duration
	m.Categories = model.MakeSet(r.Category)
	m.Description = r.Description
	m.Services.Add(r.Service)
	return m
}

// mergeRecords converts table rows into one record per title, keeping the
// order in which titles first appear.
func mergeRecords(records []*streamRecord) []*model.Media {
	out := make([]*model.Media, 0, len(records))
	byTitle := make(map[string]*model.Media, len(records))
	for _, r := range records {
		m := r.toMedia()
		if existing, ok := byTitle[m.Title]; ok {
			existing.Merge(m)
			continue
		}
		byTitle[m.Title] = m
		out = append(out, m)
	}
	return out
}

// splitDistinct splits comma-separated column values and returns the
// distinct trimmed elements, sorted.
func splitDistinct(values []string) []string {
	all := make(model.StringSet)
	for _, v := range values {
		all.Union(model.MakeSet(v))
	}
	return all.Sorted()
}

// titleForID returns the title whose media ID is id.
func titleForID(titles []string, id string) (string, bool) {
	for _, title := range titles {
		if model.MediaID(title) == id {
			return title, true
		}
	}
	return "", false
}

// orderStats returns counts for every service in model.AllServices order.
func orderStats(counts map[string]int) []model.ServiceCount {
	out := make([]model.ServiceCount, 0, len(model.AllServices))
	for _, service := range model.AllServices {
		out = append(out, model.ServiceCount{Service: string(service), Titles: counts[string(service)]})
	}
	return out
}
