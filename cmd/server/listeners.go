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

// Package main contains the logic for setting up and starting the Pub/Sub
// message listeners. Each listener receives the notifications of the export
// bucket and reloads the served catalog when a CSV export is replaced.
package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/workflow"
)

// SetupListeners attaches the catalog reload workflow to every configured
// listener and starts them in the background.
//
// Inputs:
//   - ctx: The application's root context; listeners stop when it is canceled.
//   - cloudClients: The initialized clients holding the listeners.
//   - served: The catalog being served, or nil when another data source is
//     configured. Reloading only applies to the catalog.
//   - loader, sources: Where the exports are read from on reload.
func SetupListeners(ctx context.Context, cloudClients *cloud.ServiceClients, served *catalog.Catalog, loader *ingest.Loader, sources []ingest.Source) {
	if len(cloudClients.PubSubListeners) == 0 {
		return
	}
	if served == nil {
		slog.Warn("export notifications ignored: the data source is not the in-memory catalog")
		return
	}
	for name, listener := range cloudClients.PubSubListeners {
		listener.SetCommand(workflow.NewCatalogReloadWorkflow(served, loader, sources))
		listener.Listen(ctx)
		slog.Info("catalog reload listener started", "topic", name)
	}
}
