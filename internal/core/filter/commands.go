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

package filter

import (
	"fmt"
	"sync"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CriteriaKey is the context key holding the model.Criteria of a search.
const CriteriaKey = "__CRITERIA__"

// Predicate reports whether a record stays in the working set.
type Predicate func(m *model.Media) bool

// ActorPredicate keeps records with a cast member whose name contains name,
// ignoring case.
func ActorPredicate(name string) Predicate {
	return func(m *model.Media) bool { return m.Cast.ContainsFold(name) }
}

// CategoryPredicate keeps records listed in a category containing category,
// ignoring case.
func CategoryPredicate(category string) Predicate {
	return func(m *model.Media) bool { return m.Categories.ContainsFold(category) }
}

// YearOnwardPredicate keeps records released in or after year.
func YearOnwardPredicate(year int) Predicate {
	return func(m *model.Media) bool { return m.ReleaseYear >= year }
}

// YearUntilPredicate keeps records released in or before year.
func YearUntilPredicate(year int) Predicate {
	return func(m *model.Media) bool { return m.ReleaseYear <= year }
}

// narrow returns the records of in that satisfy keep.
func narrow(in map[string]*model.Media, keep Predicate) map[string]*model.Media {
	out := make(map[string]*model.Media)
	for title, m := range in {
		if keep(m) {
			out[title] = m
		}
	}
	return out
}

// CriterionCommand narrows the working set piped through CtxIn by one search
// criterion. When the criterion was not supplied the set passes through
// unchanged.
type CriterionCommand struct {
	cor.BaseCommand
	attribute string
	supplied  func(model.Criteria) bool
	predicate func(model.Criteria) Predicate
}

// NewActorCommand creates the command applying Criteria.Actor.
func NewActorCommand() *CriterionCommand {
	return &CriterionCommand{
		BaseCommand: *cor.NewBaseCommand("filter-by-actor"),
		attribute:   "actor",
		supplied:    model.Criteria.HasActor,
		predicate:   func(c model.Criteria) Predicate { return ActorPredicate(c.Actor) },
	}
}

// NewCategoryCommand creates the command applying Criteria.Category.
func NewCategoryCommand() *CriterionCommand {
	return &CriterionCommand{
		BaseCommand: *cor.NewBaseCommand("filter-by-category"),
		attribute:   "category",
		supplied:    model.Criteria.HasCategory,
		predicate:   func(c model.Criteria) Predicate { return CategoryPredicate(c.Category) },
	}
}

// NewYearOnwardCommand creates the command applying Criteria.Year.
func NewYearOnwardCommand() *CriterionCommand {
	return &CriterionCommand{
		BaseCommand: *cor.NewBaseCommand("filter-by-year"),
		attribute:   "year",
		supplied:    model.Criteria.HasYear,
		predicate:   func(c model.Criteria) Predicate { return YearOnwardPredicate(c.Year) },
	}
}

// IsExecutable additionally requires the search criteria in the context.
func (c *CriterionCommand) IsExecutable(context cor.Context) bool {
	_, ok := context.Get(CriteriaKey).(model.Criteria)
	return c.BaseCommand.IsExecutable(context) && ok
}

// Execute narrows the working set.
func (c *CriterionCommand) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(map[string]*model.Media)
	if !ok {
		c.Fail(context, fmt.Errorf("%s: unexpected input %T", c.GetName(), context.Get(c.GetInputParam())))
		return
	}
	criteria := context.Get(CriteriaKey).(model.Criteria)

	out := in
	if c.supplied(criteria) {
		out = narrow(in, c.predicate(criteria))
	}

	span := trace.SpanFromContext(context.GetContext())
	span.SetAttributes(
		attribute.Bool("filter."+c.attribute+".supplied", c.supplied(criteria)),
		attribute.Int("filter.in", len(in)),
		attribute.Int("filter.out", len(out)),
	)

	context.Add(c.GetOutputParam(), out)
	c.Succeed(context)
}

// searchChain applies actor, category and year in that order. The commands
// keep no per-search state, so one chain serves every search.
var searchChain = sync.OnceValue(func() cor.Chain {
	chain := cor.NewBaseChain("filter-chain")
	chain.AddCommand(NewActorCommand())
	chain.AddCommand(NewCategoryCommand())
	chain.AddCommand(NewYearOnwardCommand())
	return chain
})
