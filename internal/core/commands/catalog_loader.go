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
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CatalogLoader rebuilds a catalog from every configured export. Its input
// is the GCSObject that triggered the reload; its output is the new
// *catalog.Catalog. All exports are read, not only the updated one, because
// a title's record merges rows from several services.
type CatalogLoader struct {
	cor.BaseCommand
	loader  *ingest.Loader
	sources []ingest.Source
}

// NewCatalogLoader creates the command.
//
// Inputs:
//   - name: The command name.
//   - loader: Opens local and gs:// exports.
//   - sources: The exports to read.
func NewCatalogLoader(name string, loader *ingest.Loader, sources []ingest.Source) *CatalogLoader {
	return &CatalogLoader{BaseCommand: *cor.NewBaseCommand(name), loader: loader, sources: sources}
}

// Execute loads the exports and builds the catalog.
func (c *CatalogLoader) Execute(context cor.Context) {
	if obj, ok := context.Get(c.GetInputParam()).(*cloud.GCSObject); ok {
		slog.InfoContext(context.GetContext(), "reloading catalog", "trigger", obj.URI())
	}

	built, err := catalog.Load(context.GetContext(), c.loader, c.sources)
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to load exports: %w", err))
		return
	}
	trace.SpanFromContext(context.GetContext()).SetAttributes(attribute.Int("catalog.titles", built.Len()))

	context.Add(c.GetOutputParam(), built)
	c.Succeed(context)
}
