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

package services

import (
	"context"
	"strings"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/filter"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/formatting"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
)

// CatalogSource answers queries from the in-memory catalog.
type CatalogSource struct {
	Catalog *catalog.Catalog
}

// NewCatalogSource creates a source over c.
func NewCatalogSource(c *catalog.Catalog) *CatalogSource {
	return &CatalogSource{Catalog: c}
}

func sorted(data filter.FilteredData) []*model.Media {
	out := data.Media()
	SortByRelease(out)
	return out
}

func (s *CatalogSource) MediaByActor(_ context.Context, actor string) ([]*model.Media, error) {
	return sorted(filter.New(s.Catalog).ByActor(actor).Data()), nil
}

func (s *CatalogSource) MediaByCategory(_ context.Context, category string) ([]*model.Media, error) {
	return sorted(filter.New(s.Catalog).ByCategory(category).Data()), nil
}

func (s *CatalogSource) MediaLaterThan(_ context.Context, year int) ([]*model.Media, error) {
	return sorted(filter.New(s.Catalog).ByYearOnward(year).Data()), nil
}

// MediaByAdvancedFilter runs the criteria through the filter chain.
func (s *CatalogSource) MediaByAdvancedFilter(ctx context.Context, criteria model.Criteria) ([]*model.Media, error) {
	data, err := filter.New(s.Catalog).ForCL(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return sorted(data), nil
}

func (s *CatalogSource) AllCategories(_ context.Context) ([]string, error) {
	return s.Catalog.Categories(), nil
}

func (s *CatalogSource) AllActors(_ context.Context) ([]string, error) {
	return s.Catalog.Actors(), nil
}

func (s *CatalogSource) AllTitles(_ context.Context) ([]string, error) {
	media := filter.New(s.Catalog).Data().Media()
	SortByRelease(media)
	out := make([]string, 0, len(media))
	for _, m := range media {
		out = append(out, formatting.UnescapeTitle(m.Title))
	}
	return out, nil
}

// MediaByTitle prefers an exact match and falls back to a case-insensitive one.
func (s *CatalogSource) MediaByTitle(_ context.Context, title string) (*model.Media, error) {
	if m, ok := s.Catalog.Get(title); ok {
		return m, nil
	}
	for _, candidate := range s.Catalog.Titles() {
		if strings.EqualFold(candidate, title) {
			if m, ok := s.Catalog.Get(candidate); ok {
				return m, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (s *CatalogSource) MediaByID(_ context.Context, id string) (*model.Media, error) {
	if m, ok := s.Catalog.GetByID(id); ok {
		return m, nil
	}
	return nil, ErrNotFound
}

func (s *CatalogSource) Stats(_ context.Context) ([]model.ServiceCount, error) {
	return s.Catalog.Stats(), nil
}

// Close is a no-op.
func (s *CatalogSource) Close() error {
	return nil
}
