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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
)

// StateManager holds the shared components for the application.
type StateManager struct {
	config  *cloud.Config
	cloud   *cloud.ServiceClients
	catalog *catalog.Catalog // Only set in catalog mode.
	source  services.DataSource
}

var state = &StateManager{}

// SetupOS defaults the configuration directory and runtime when the
// environment does not choose them.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, cloud.DefaultRuntime)
	}
	return err
}

// GetConfig loads the application configuration on first use.
func GetConfig() (*cloud.Config, error) {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			return nil, fmt.Errorf("failed to setup environment: %w", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			return nil, err
		}
		state.config = config
	}
	return state.config, nil
}

// InitState creates the cloud clients, loads the catalog when it is the
// configured data source, opens the data source and starts the listeners.
func InitState(ctx context.Context) error {
	config, err := GetConfig()
	if err != nil {
		return err
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients

	loader := ingest.NewLoader(cloudClients.StorageClient)
	sources := ingest.SourcesFromConfig(config)
	if config.DataSource.Mode == cloud.ModeCatalog {
		c, err := catalog.Load(ctx, loader, sources)
		if err != nil {
			return err
		}
		slog.Info("catalog loaded", "titles", c.Len())
		state.catalog = c
	}

	source, err := services.Open(ctx, config, cloudClients, state.catalog)
	if err != nil {
		return err
	}
	state.source = source

	SetupListeners(ctx, cloudClients, state.catalog, loader, sources)
	return nil
}

// CloseState releases the data source and the cloud clients.
func CloseState() {
	if state.source != nil {
		if err := state.source.Close(); err != nil {
			slog.Warn("failed to close data source", "error", err)
		}
	}
	if state.cloud != nil {
		state.cloud.Close()
	}
}
