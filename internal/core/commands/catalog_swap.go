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

package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
)

// ErrEmptyCatalog is returned when a reload produced no titles.
var ErrEmptyCatalog = errors.New("reloaded catalog is empty")

// CatalogSwap replaces the live catalog with the one built by the previous
// command. An empty catalog is refused so a truncated upload cannot wipe
// the served data. Its output is the number of titles now served.
type CatalogSwap struct {
	cor.BaseCommand
	target *catalog.Catalog
}

// NewCatalogSwap creates the command.
func NewCatalogSwap(name string, target *catalog.Catalog) *CatalogSwap {
	return &CatalogSwap{BaseCommand: *cor.NewBaseCommand(name), target: target}
}

// Execute swaps the catalogs.
func (c *CatalogSwap) Execute(context cor.Context) {
	built, ok := context.Get(c.GetInputParam()).(*catalog.Catalog)
	if !ok {
		c.Fail(context, fmt.Errorf("expected a catalog, got %T", context.Get(c.GetInputParam())))
		return
	}
	titles := built.Len()
	if titles == 0 {
		c.Fail(context, ErrEmptyCatalog)
		return
	}

	c.target.Replace(built)
	slog.InfoContext(context.GetContext(), "catalog replaced", "titles", titles)
	context.Add(c.GetOutputParam(), titles)
	c.Succeed(context)
}
