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

// Package ingest reads the streaming services' CSV exports into raw rows and
// converts them into media records.
//
// This file, `loader.go`, resolves export locations (local paths or
// `gs://bucket/object` URIs) and reads every configured export.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
)

// Source is the location of one service's export.
type Source struct {
	Service  model.StreamingService
	Location string
}

// ServiceRows holds the rows read from one source.
type ServiceRows struct {
	Service model.StreamingService
	Rows    []model.Row
}

// Default export file names.
var exportFiles = map[model.StreamingService]string{
	model.Netflix:     "netflix_titles.csv",
	model.AmazonPrime: "amazon_prime_titles.csv",
	model.DisneyPlus:  "disney_plus_titles.csv",
	model.Hulu:        "hulu_titles.csv",
}

// DefaultSources returns the exports of the four services under dir, which
// may be a local directory or a gs://bucket prefix.
func DefaultSources(dir string) []Source {
	out := make([]Source, 0, len(model.AllServices))
	for _, service := range model.AllServices {
		out = append(out, Source{Service: service, Location: join(dir, exportFiles[service])})
	}
	return out
}

// SourcesFromConfig returns the default sources under the configured data
// directory, with any per-service override applied.
func SourcesFromConfig(config *cloud.Config) []Source {
	sources := DefaultSources(config.CSVExports.DataDir)
	for i, source := range sources {
		if location, ok := config.CSVExports.Sources[string(source.Service)]; ok && location != "" {
			sources[i].Location = location
		}
	}
	return sources
}

// ServiceForObject returns the service whose default export file name is
// the base name of object.
func ServiceForObject(object string) (model.StreamingService, bool) {
	base := path.Base(object)
	for service, name := range exportFiles {
		if name == base {
			return service, true
		}
	}
	return "", false
}

func join(dir, name string) string {
	if cloud.IsGCSURI(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}

// Opener opens an export location for reading.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// FileOpener opens local files.
type FileOpener struct{}

// Open opens the file at location.
func (FileOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	return os.Open(location)
}

// GCSOpener opens objects stored in Cloud Storage.
type GCSOpener struct {
	Client *storage.Client
}

// Open opens the gs:// object at location.
func (o GCSOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return cloud.OpenGCSObject(ctx, o.Client, location)
}

// Loader reads exports through the opener matching their location.
type Loader struct {
	Files Opener // Used for local paths.
	GCS   Opener // Used for gs:// locations; nil disables them.
}

// NewLoader creates a Loader. storageClient may be nil when no export lives
// in Cloud Storage.
func NewLoader(storageClient *storage.Client) *Loader {
	l := &Loader{Files: FileOpener{}}
	if storageClient != nil {
		l.GCS = GCSOpener{Client: storageClient}
	}
	return l
}

func (l *Loader) opener(location string) (Opener, error) {
	if cloud.IsGCSURI(location) {
		if l.GCS == nil {
			return nil, fmt.Errorf("no storage client configured for %s", location)
		}
		return l.GCS, nil
	}
	return l.Files, nil
}

// Load reads a single source.
//
// Inputs:
//   - ctx: Used for cancellation of remote reads.
//   - source: The service and location of the export.
//
// Outputs:
//   - []model.Row: The rows of the export.
//   - error: An error if the export cannot be opened or parsed.
func (l *Loader) Load(ctx context.Context, source Source) ([]model.Row, error) {
	opener, err := l.opener(source.Location)
	if err != nil {
		return nil, err
	}
	rc, err := opener.Open(ctx, source.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s export %s: %w", source.Service, source.Location, err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.Warn("failed to close export", "location", source.Location, "error", err)
		}
	}()
	return ReadRows(rc, source.Service)
}

// LoadAll reads every source in order. Any failure aborts the load so a
// catalog is never built from a partial set of exports.
func (l *Loader) LoadAll(ctx context.Context, sources []Source) ([]ServiceRows, error) {
	out := make([]ServiceRows, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := l.Load(ctx, source)
		if err != nil {
			return nil, err
		}
		slog.Info("loaded export", "service", source.Service, "location", source.Location, "rows", len(rows))
		out = append(out, ServiceRows{Service: source.Service, Rows: rows})
	}
	return out, nil
}
