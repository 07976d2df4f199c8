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

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
)

// ErrNoBigQueryClient is returned when BigQuery mode is configured without a client.
var ErrNoBigQueryClient = errors.New("bigquery mode requires a bigquery client")

// Open builds the data source selected by config.DataSource.Mode and wraps
// it with the configured client-side quota.
//
// Inputs:
//   - ctx: The context used to connect to the backend.
//   - config: The application configuration.
//   - clients: The cloud clients; only BigQuery mode reads them.
//   - c: The catalog served in catalog mode; ignored otherwise.
//
// Outputs:
//   - DataSource: The ready data source. The caller must Close it.
//   - error: An error if the mode is unknown or the backend cannot be reached.
func Open(ctx context.Context, config *cloud.Config, clients *cloud.ServiceClients, c *catalog.Catalog) (DataSource, error) {
	var ds DataSource
	switch config.DataSource.Mode {
	case cloud.ModeCatalog:
		if c == nil {
			return nil, errors.New("catalog mode requires a loaded catalog")
		}
		ds = NewCatalogSource(c)
	case cloud.ModePostgres:
		s, err := OpenSQLSource(ctx, Postgres, config.Postgres.DSN, config.Postgres.Table)
		if err != nil {
			return nil, err
		}
		ds = s
	case cloud.ModeSQLite:
		s, err := OpenSQLSource(ctx, SQLite, config.SQLite.DSN, config.SQLite.Table)
		if err != nil {
			return nil, err
		}
		ds = s
	case cloud.ModeBigQuery:
		if clients == nil || clients.BigQueryClient == nil {
			return nil, ErrNoBigQueryClient
		}
		ds = &BigQuerySource{
			BigqueryClient: clients.BigQueryClient,
			DatasetName:    config.BigQueryDataSource.DatasetName,
			MediaTable:     config.BigQueryDataSource.MediaTable,
		}
	default:
		return nil, fmt.Errorf("unknown data source mode %q", config.DataSource.Mode)
	}
	return NewQuotaAwareSource(ds, config.DataSource.RequestsPerSecond, config.DataSource.Burst), nil
}
