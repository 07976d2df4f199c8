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

// Package catalog holds the combined, title-keyed collection of media records
// built from every streaming service's export.
//
// A title exported by several services is stored once: its service set (and
// every other set-valued field) is the union of the exported rows, while
// scalar fields keep the first value seen. The catalog is safe for concurrent
// use, and Replace swaps the whole content at once so a reload never exposes a
// partially built catalog to readers.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
)

// Catalog is the combined collection of media records keyed by title.
type Catalog struct {
	mu     sync.RWMutex
	titles map[string]*model.Media
	ids    map[string]string // media ID -> title
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		titles: make(map[string]*model.Media),
		ids:    make(map[string]string),
	}
}

// Build creates a catalog from rows grouped by service. Rows are added in
// the order given, so the first service to export a title supplies its
// scalar fields. Rows with an unreadable release year are skipped with a warning.
//
// Inputs:
//   - rowsByService: Rows read from each export, in ingestion order.
//
// Outputs:
//   - *Catalog: The merged catalog.
//   - int: The number of rows skipped.
func Build(rowsByService []ingest.ServiceRows) (*Catalog, int) {
	c := New()
	skipped := 0
	for _, group := range rowsByService {
		for _, row := range group.Rows {
			m, err := ingest.ToMedia(row)
			if err != nil {
				slog.Warn("skipping row", "service", group.Service, "error", err)
				skipped++
				continue
			}
			c.Add(m)
		}
	}
	return c, skipped
}

// Add inserts a record, merging it into an existing record of the same title.
func (c *Catalog) Add(m *model.Media) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.titles[m.Title]; ok {
		existing.Merge(m)
		return
	}
	c.titles[m.Title] = m
	c.ids[m.Id] = m.Title
}

// Len returns the number of distinct titles.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.titles)
}

// Get returns a copy of the record for a title.
func (c *Catalog) Get(title string) (*model.Media, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.titles[title]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// GetByID returns a copy of the record with the given ID.
func (c *Catalog) GetByID(id string) (*model.Media, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	title, ok := c.ids[id]
	if !ok {
		return nil, false
	}
	return c.titles[title].Clone(), true
}

// Titles returns every title in ascending order.
func (c *Catalog) Titles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.titles))
	for title := range c.titles {
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}

// Categories returns the sorted union of every record's categories.
func (c *Catalog) Categories() []string {
	return c.union(func(m *model.Media) model.StringSet { return m.Categories })
}

// Actors returns the sorted union of every record's cast.
func (c *Catalog) Actors() []string {
	return c.union(func(m *model.Media) model.StringSet { return m.Cast })
}

func (c *Catalog) union(field func(*model.Media) model.StringSet) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make(model.StringSet)
	for _, m := range c.titles {
		all.Union(field(m))
	}
	return all.Sorted()
}

// Snapshot returns a shallow copy of the title map. Filtering narrows the
// copy without touching the catalog; records must be treated as read-only.
func (c *Catalog) Snapshot() map[string]*model.Media {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*model.Media, len(c.titles))
	for title, m := range c.titles {
		out[title] = m
	}
	return out
}

// Stats returns the number of titles available on each service, in the
// order of model.AllServices.
func (c *Catalog) Stats() []model.ServiceCount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.ServiceCount, 0, len(model.AllServices))
	for _, service := range model.AllServices {
		n := 0
		for _, m := range c.titles {
			if m.Services.Contains(string(service)) {
				n++
			}
		}
		out = append(out, model.ServiceCount{Service: string(service), Titles: n})
	}
	return out
}

// Replace swaps in the content of other. other must not be used afterwards.
func (c *Catalog) Replace(other *Catalog) {
	other.mu.Lock()
	titles, ids := other.titles, other.ids
	other.titles, other.ids = nil, nil
	other.mu.Unlock()

	c.mu.Lock()
	c.titles, c.ids = titles, ids
	c.mu.Unlock()
}

// Load reads every source through loader and builds a catalog from them.
//
// Inputs:
//   - ctx: Used for cancellation of remote reads.
//   - loader: Opens local and gs:// exports.
//   - sources: The exports to read, in ingestion order.
//
// Outputs:
//   - *Catalog: The merged catalog.
//   - error: An error if any export cannot be read.
func Load(ctx context.Context, loader *ingest.Loader, sources []ingest.Source) (*Catalog, error) {
	rows, err := loader.LoadAll(ctx, sources)
	if err != nil {
		return nil, err
	}
	c, skipped := Build(rows)
	slog.InfoContext(ctx, "catalog built", "titles", c.Len(), "skipped_rows", skipped)
	return c, nil
}
