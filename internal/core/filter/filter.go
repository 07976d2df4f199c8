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

// Package filter is the search engine over the in-memory catalog.
//
// A Filter keeps a working copy of the catalog. Each predicate narrows the
// working copy, so predicates compose by calling them in sequence, and
// Refresh restores the full catalog. Searches (ForCL, ForWeb) refresh first
// and then run the supplied criteria through a chain of commands (actor,
// category, year), each traced and counted.
//
// A Filter is not safe for concurrent use; create one per request. Creating a
// Filter only copies the catalog's title map.
package filter

import (
	"context"
	"errors"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/formatting"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
)

// ErrInvalidYear is returned when a year criterion is not an integer.
var ErrInvalidYear = errors.New("year must be a whole number")

// Filter narrows a working copy of a catalog.
type Filter struct {
	catalog *catalog.Catalog
	working map[string]*model.Media
}

// New creates a Filter whose working copy is the full catalog.
func New(c *catalog.Catalog) *Filter {
	return &Filter{catalog: c, working: c.Snapshot()}
}

// Refresh resets the working copy to the full catalog.
func (f *Filter) Refresh() *Filter {
	f.working = f.catalog.Snapshot()
	return f
}

// Apply keeps the records of the working copy that satisfy keep.
func (f *Filter) Apply(keep Predicate) *Filter {
	f.working = narrow(f.working, keep)
	return f
}

// ByActor keeps titles with a cast member whose name contains name.
func (f *Filter) ByActor(name string) *Filter {
	return f.Apply(ActorPredicate(name))
}

// ByCategory keeps titles listed in a category containing category.
func (f *Filter) ByCategory(category string) *Filter {
	return f.Apply(CategoryPredicate(category))
}

// ByYearOnward keeps titles released in or after year.
func (f *Filter) ByYearOnward(year int) *Filter {
	return f.Apply(YearOnwardPredicate(year))
}

// ByYearUntil keeps titles released in or before year.
func (f *Filter) ByYearUntil(year int) *Filter {
	return f.Apply(YearUntilPredicate(year))
}

// Data returns the current working copy.
func (f *Filter) Data() FilteredData {
	return FilteredData{data: f.working}
}

// ForCL refreshes the working copy and applies every supplied criterion.
//
// Inputs:
//   - ctx: The request context, used for tracing.
//   - criteria: The search criteria. Empty fields are ignored.
//
// Outputs:
//   - FilteredData: The matching records.
//   - error: An error reported by the filter chain.
func (f *Filter) ForCL(ctx context.Context, criteria model.Criteria) (FilteredData, error) {
	f.Refresh()

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(cor.CtxIn, f.working)
	chCtx.Add(CriteriaKey, criteria)
	defer chCtx.Close()

	searchChain().Execute(chCtx)
	if chCtx.HasErrors() {
		return FilteredData{}, cor.FirstError(chCtx)
	}
	if out, ok := chCtx.Get(cor.CtxOut).(map[string]*model.Media); ok {
		f.working = out
	}
	return f.Data(), nil
}

// ForWeb parses URL path segments into criteria and runs them like ForCL.
func (f *Filter) ForWeb(ctx context.Context, actor, category, year string) (FilteredData, error) {
	criteria, err := ParseWebCriteria(actor, category, year)
	if err != nil {
		return FilteredData{}, err
	}
	return f.ForCL(ctx, criteria)
}

// ParseWebCriteria converts URL path segments into criteria. A segment that
// is a placeholder ("_", "-" or "x") omits its criterion; in text segments
// "-", "_" and "%20" stand for spaces.
//
// Inputs:
//   - actor, category, year: The raw path segments.
//
// Outputs:
//   - model.Criteria: The parsed criteria.
//   - error: ErrInvalidYear when a supplied year is not an integer.
func ParseWebCriteria(actor, category, year string) (model.Criteria, error) {
	var criteria model.Criteria
	if formatting.URLInputNotNull(actor) {
		criteria.Actor = strings.TrimSpace(formatting.ReformatURLInput(actor))
	}
	if formatting.URLInputNotNull(category) {
		criteria.Category = strings.TrimSpace(formatting.ReformatURLInput(category))
	}
	if year = strings.TrimSpace(year); year != "" && formatting.URLInputNotNull(year) {
		y, err := strconv.Atoi(year)
		if err != nil {
			return model.Criteria{}, ErrInvalidYear
		}
		criteria.Year = y
	}
	return criteria, nil
}

// FilteredData is the result of a search over the catalog.
type FilteredData struct {
	data map[string]*model.Media
}

// NewFilteredData wraps records keyed by title.
func NewFilteredData(data map[string]*model.Media) FilteredData {
	return FilteredData{data: data}
}

// Data returns the matching records keyed by title.
func (d FilteredData) Data() map[string]*model.Media {
	return d.data
}

// Len returns the number of matching titles.
func (d FilteredData) Len() int {
	return len(d.data)
}

// Titles returns the matching titles in ascending order.
func (d FilteredData) Titles() []string {
	out := make([]string, 0, len(d.data))
	for title := range d.data {
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}

// Media returns the matching records ordered by title.
func (d FilteredData) Media() []*model.Media {
	out := make([]*model.Media, 0, len(d.data))
	for _, title := range d.Titles() {
		out = append(out, d.data[title])
	}
	return out
}

// Verbose describes every matching record, separated by blank lines.
func (d FilteredData) Verbose() string {
	parts := make([]string, 0, len(d.data))
	for _, m := range d.Media() {
		parts = append(parts, formatting.MediaVerbose(m))
	}
	return strings.Join(parts, "\n\n")
}

// WebTitles returns the matching titles, HTML-escaped, as a line-broken list.
func (d FilteredData) WebTitles() string {
	titles := d.Titles()
	for i, title := range titles {
		titles[i] = html.EscapeString(title)
	}
	return formatting.WebList(titles)
}
