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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the data sources, Google Cloud services, the web server and telemetry.
//
// Structs:
//   - DataSource: Selects which backend answers queries.
//   - CSVExports: Locations of the streaming services' CSV exports.
//   - SQLDataSource: Connection settings of a relational backend.
//   - BigQueryDataSource: Configuration for the BigQuery dataset and table.
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Storage: Configuration for the Cloud Storage export bucket.
//   - Server: Web server settings.
//   - Telemetry: Logging, tracing and metrics settings.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with defaults.
package cloud

// Data source modes.
const (
	ModeCatalog  = "catalog"  // In-memory catalog built from the CSV exports.
	ModePostgres = "postgres" // stream_data table in PostgreSQL.
	ModeSQLite   = "sqlite"   // stream_data table in an SQLite file.
	ModeBigQuery = "bigquery" // stream_data table in BigQuery.
)

// DataSource selects the backend and its client-side quota.
type DataSource struct {
	Mode              string  `toml:"mode"`                // One of the Mode* constants.
	RequestsPerSecond float64 `toml:"requests_per_second"` // Query rate allowed against the backend; 0 disables limiting.
	Burst             int     `toml:"burst"`               // Maximum burst of queries.
}

// CSVExports holds the locations of the CSV exports. A location may be a
// local path or a gs:// URI.
type CSVExports struct {
	DataDir string            `toml:"data_dir"` // Directory holding the default export file names.
	Sources map[string]string `toml:"sources"`  // Optional per-service override, keyed by service name (e.g., "Netflix").
}

// SQLDataSource holds the connection settings of a relational backend.
type SQLDataSource struct {
	DSN   string `toml:"dsn"`   // The driver-specific data source name.
	Table string `toml:"table"` // The table holding the combined catalog.
}

// BigQueryDataSource represents the configuration for a BigQuery data source.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`     // The name of the BigQuery dataset.
	MediaTable  string `toml:"media_table"` // The name of the table containing the combined catalog.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Storage represents the configuration for the export bucket.
type Storage struct {
	ExportBucket string `toml:"export_bucket"` // The bucket the CSV exports are uploaded to.
}

// Server holds the web server settings.
type Server struct {
	Port                   int      `toml:"port"`                     // The port to listen on.
	AllowedOrigins         []string `toml:"allowed_origins"`          // CORS origins allowed to call the JSON API.
	RequestsPerSecond      float64  `toml:"requests_per_second"`      // Per-client request rate; 0 disables limiting.
	Burst                  int      `toml:"burst"`                    // Per-client burst.
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"` // Grace period for in-flight requests on shutdown.
}

// Telemetry holds the logging, tracing and metrics settings.
type Telemetry struct {
	LogFile       string `toml:"log_file"`       // Optional file receiving a copy of the logs.
	LogLevel      string `toml:"log_level"`      // debug, info, warn or error.
	EnableTracing bool   `toml:"enable_tracing"` // Export traces to Cloud Trace.
	EnableMetrics bool   `toml:"enable_metrics"` // Export metrics to Cloud Monitoring.
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
	} `toml:"application"`
	DataSource         DataSource                   `toml:"data_source"`           // Backend selection.
	CSVExports         CSVExports                   `toml:"csv_exports"`           // CSV export locations.
	Postgres           SQLDataSource                `toml:"postgres"`              // PostgreSQL settings.
	SQLite             SQLDataSource                `toml:"sqlite"`                // SQLite settings.
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"` // BigQuery data source configuration.
	Storage            Storage                      `toml:"storage"`               // Storage configuration.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`   // Pub/Sub subscriptions, keyed by a logical name (e.g., "ExportTopic").
	Server             Server                       `toml:"server"`                // Web server configuration.
	Telemetry          Telemetry                    `toml:"telemetry"`             // Observability configuration.
}

// NewConfig is a constructor function that creates a new, initialized Config instance.
// Map fields are initialized so the loader can populate them, and every
// setting that a configuration file may omit gets a usable default.
//
// Outputs:
//   - *Config: A pointer to a new Config struct.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	c.Application.Name = "streamsearch"
	c.DataSource.Mode = ModeCatalog
	c.CSVExports.DataDir = "Data"
	c.CSVExports.Sources = make(map[string]string)
	c.Postgres.Table = "stream_data"
	c.SQLite.DSN = "streamsearch.db"
	c.SQLite.Table = "stream_data"
	c.BigQueryDataSource.MediaTable = "stream_data"
	c.Server.Port = 8080
	c.Server.ShutdownTimeoutSeconds = 10
	c.Telemetry.LogLevel = "info"
	return c
}
