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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements the
// catalog reload workflow.
package workflow

import (
	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/commands"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
)

// CatalogReloadWorkflow rebuilds the served catalog when a CSV export is
// uploaded to the export bucket. It is attached to the Pub/Sub listener of
// the bucket's notification topic and receives the raw notification as input.
type CatalogReloadWorkflow struct {
	cor.BaseCommand
	target  *catalog.Catalog
	loader  *ingest.Loader
	sources []ingest.Source
	chain   cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain context, holding the notification under cor.CtxIn.
func (m *CatalogReloadWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
func (m *CatalogReloadWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Step 1: Parse the notification; objects that are not exports stop here.
	out.AddCommand(commands.NewExportTriggerToGCSObject("export-trigger-to-gcs-object"))

	// Step 2: Read every export and build a fresh catalog.
	out.AddCommand(commands.NewCatalogLoader("load-catalog", m.loader, m.sources))

	// Step 3: Swap the fresh catalog in for the served one.
	out.AddCommand(commands.NewCatalogSwap("swap-catalog", m.target))

	m.chain = out
}

// NewCatalogReloadWorkflow is the constructor for the CatalogReloadWorkflow.
//
// Inputs:
//   - target: The catalog served by the application; replaced on every reload.
//   - loader: Opens local and gs:// exports.
//   - sources: The exports to read.
//
// Returns:
//   - A pointer to a newly created and fully initialized CatalogReloadWorkflow.
func NewCatalogReloadWorkflow(target *catalog.Catalog, loader *ingest.Loader, sources []ingest.Source) *CatalogReloadWorkflow {
	workflow := &CatalogReloadWorkflow{
		BaseCommand: *cor.NewBaseCommand("catalog-reload-workflow"),
		target:      target,
		loader:      loader,
		sources:     sources,
	}
	workflow.initializeChain()
	return workflow
}
