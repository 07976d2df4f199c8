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
	"os"

	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
)

// app holds what the commands need from the environment, so tests can
// substitute fixtures.
type app struct {
	config     func() (*cloud.Config, error)
	openSource func(ctx context.Context, config *cloud.Config) (services.DataSource, error)
	openSQL    func(ctx context.Context, config *cloud.Config) (*services.SQLSource, error)
	loadRows   func(ctx context.Context, config *cloud.Config) ([]ingest.ServiceRows, error)
}

func defaultApp() *app {
	return &app{
		config:     loadConfig,
		openSource: openSource,
		openSQL:    openSQL,
		loadRows:   loadRows,
	}
}

// loadConfig reads configs/.env.toml and the runtime override, defaulting the
// directory and runtime when the environment does not choose them.
func loadConfig() (*cloud.Config, error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return nil, err
		}
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	// The CLI never listens for notifications.
	config.TopicSubscriptions = nil
	return config, nil
}

// clients creates the cloud clients the configuration needs; a local setup
// needs none.
func clients(ctx context.Context, config *cloud.Config) (*cloud.ServiceClients, error) {
	return cloud.NewCloudServiceClients(ctx, config)
}

func loadRows(ctx context.Context, config *cloud.Config) ([]ingest.ServiceRows, error) {
	cloudClients, err := clients(ctx, config)
	if err != nil {
		return nil, err
	}
	defer cloudClients.Close()
	return ingest.NewLoader(cloudClients.StorageClient).LoadAll(ctx, ingest.SourcesFromConfig(config))
}

// openSource opens the configured data source. In catalog mode the exports
// are read first.
func openSource(ctx context.Context, config *cloud.Config) (services.DataSource, error) {
	cloudClients, err := clients(ctx, config)
	if err != nil {
		return nil, err
	}
	var c *catalog.Catalog
	if config.DataSource.Mode == cloud.ModeCatalog {
		c, err = catalog.Load(ctx, ingest.NewLoader(cloudClients.StorageClient), ingest.SourcesFromConfig(config))
		if err != nil {
			cloudClients.Close()
			return nil, err
		}
	}
	ds, err := services.Open(ctx, config, cloudClients, c)
	if err != nil {
		cloudClients.Close()
		return nil, err
	}
	return &closingSource{DataSource: ds, clients: cloudClients}, nil
}

// openSQL opens the configured relational table for import.
func openSQL(ctx context.Context, config *cloud.Config) (*services.SQLSource, error) {
	switch config.DataSource.Mode {
	case cloud.ModePostgres:
		return services.OpenSQLSource(ctx, services.Postgres, config.Postgres.DSN, config.Postgres.Table)
	case cloud.ModeSQLite:
		return services.OpenSQLSource(ctx, services.SQLite, config.SQLite.DSN, config.SQLite.Table)
	default:
		return nil, fmt.Errorf("import needs a sql source (postgres or sqlite), not %q", config.DataSource.Mode)
	}
}

// closingSource also closes the cloud clients when the source is closed.
type closingSource struct {
	services.DataSource
	clients *cloud.ServiceClients
}

func (s *closingSource) Close() error {
	defer s.clients.Close()
	return s.DataSource.Close()
}
