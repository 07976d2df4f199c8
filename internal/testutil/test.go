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

// Package test provides utility functions and fixture data to support the
// application's test suite. It loads the test-specific configuration, locates
// the fixture CSV exports and builds a catalog from them.
package test

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
)

// StateManager caches the test configuration so it is loaded once per run.
type StateManager struct {
	once   sync.Once
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test immediately if err is not nil.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// root returns the repository root, resolved from this file's location so
// tests work from any package directory.
func root() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// DataDir returns the directory holding the fixture exports.
func DataDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata")
}

// Sources returns the four fixture exports.
func Sources() []ingest.Source {
	return ingest.DefaultSources(DataDir())
}

// LoadCatalog builds a catalog from the fixture exports.
//
// The fixtures hold seven distinct titles. "The Grand Seduction" is exported
// by both Netflix and Amazon Prime.
func LoadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	rows, err := ingest.NewLoader(nil).LoadAll(context.Background(), Sources())
	HandleErr(err, t)
	c, skipped := catalog.Build(rows)
	if skipped != 0 {
		t.Fatalf("fixture rows skipped: %d", skipped)
	}
	return c
}

// GetTestExportMessageText returns the JSON payload of a Cloud Storage
// notification for a Netflix export finalized in the export bucket.
func GetTestExportMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "streamsearch-exports/netflix_titles.csv/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/streamsearch-exports/o/netflix_titles.csv",
  "name": "netflix_titles.csv",
  "bucket": "streamsearch-exports",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "text/csv",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2024-10-11T03:04:08.672Z",
  "size": "3399671",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/streamsearch-exports/o/netflix_titles.csv?generation=1728615848664286&alt=media",
  "metadata": { "touch": "18" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`
}

// SetupOS points the configuration loader at the repository's configs
// directory and selects the "test" runtime (`configs/.env.test.toml`).
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, filepath.Join(root(), "configs"))
	if err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig returns the test configuration, loading it on first use.
func GetConfig() *cloud.Config {
	state.once.Do(func() {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	})
	return state.config
}
