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

// Package cloud provides components for interacting with Google Cloud services.
// This file initializes and holds the client objects needed to communicate with
// Google Cloud. A single `ServiceClients` struct is created at startup and
// passed to whatever needs a client.
//
// Only the clients the configuration actually calls for are created, so a
// purely local setup (CSV exports on disk, SQLite or the in-memory catalog)
// runs without Google Cloud credentials.
//
// Structs:
//   - ServiceClients: A container struct holding the initialized clients and
//     Pub/Sub listeners.
//
// Functions:
//   - Close: Shuts down every client that was created.
//   - NewCloudServiceClients: Creates the clients required by the configuration.
package cloud

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
)

// ServiceClients is a central container for the clients that interact with
// Google Cloud. Any field may be nil when the configuration does not need it.
type ServiceClients struct {
	StorageClient   *storage.Client            // Client for Google Cloud Storage (GCS).
	PubsubClient    *pubsub.Client             // Client for Google Cloud Pub/Sub.
	BigQueryClient  *bigquery.Client           // Client for Google Cloud BigQuery.
	PubSubListeners map[string]*PubSubListener // Active Pub/Sub listeners, keyed by a logical name from the config.
}

// Close shuts down every client that was created.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
}

// NeedsStorage reports whether any export lives in Cloud Storage or a bucket
// is configured for reload notifications.
func NeedsStorage(config *Config) bool {
	if config.Storage.ExportBucket != "" || IsGCSURI(config.CSVExports.DataDir) {
		return true
	}
	for _, location := range config.CSVExports.Sources {
		if IsGCSURI(location) {
			return true
		}
	}
	return false
}

// NewCloudServiceClients initializes the Google Cloud clients required by the
// configuration.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: The initialized clients.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}

	if NeedsStorage(config) {
		if cloud.StorageClient, err = storage.NewClient(ctx); err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	if len(config.TopicSubscriptions) > 0 {
		if cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			cloud.Close()
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
		// Commands are attached once the reload workflow is built.
		for subKey, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(cloud.PubsubClient, values.Name, nil)
			if err != nil {
				cloud.Close()
				return nil, err
			}
			cloud.PubSubListeners[subKey] = listener
		}
	}

	if config.DataSource.Mode == ModeBigQuery {
		if cloud.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			cloud.Close()
			return nil, fmt.Errorf("failed to create bigquery client: %w", err)
		}
	}

	slog.Debug("cloud clients ready",
		"storage", cloud.StorageClient != nil,
		"pubsub", cloud.PubsubClient != nil,
		"bigquery", cloud.BigQueryClient != nil)
	return cloud, nil
}
