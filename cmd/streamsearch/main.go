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

// Package main is the StreamSearch command line interface. It searches the
// combined streaming catalog by actor, category and release year.
package main

import (
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-stream-search/internal/telemetry"
)

func main() {
	// Logs go to stderr so they never mix with results.
	slog.SetDefault(telemetry.NewLogger(os.Stderr, slog.LevelWarn))

	if err := newRootCmd(defaultApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
