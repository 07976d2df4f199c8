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
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/formatting"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
	test "github.com/jaycherian/gcp-go-stream-search/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureApp serves the fixture catalog and imports into a temporary SQLite file.
func fixtureApp(t *testing.T) (*app, *string) {
	color.NoColor = true
	dsn := filepath.Join(t.TempDir(), "cli.db")
	var mode string
	return &app{
		config: func() (*cloud.Config, error) {
			config := cloud.NewConfig()
			config.SQLite.DSN = dsn
			return config, nil
		},
		openSource: func(_ context.Context, config *cloud.Config) (services.DataSource, error) {
			mode = config.DataSource.Mode
			return services.NewCatalogSource(test.LoadCatalog(t)), nil
		},
		openSQL:  openSQL,
		loadRows: func(ctx context.Context, _ *cloud.Config) ([]ingest.ServiceRows, error) {
			return ingest.NewLoader(nil).LoadAll(ctx, test.Sources())
		},
	}, &mode
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd(a)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNoFilter(t *testing.T) {
	a, _ := fixtureApp(t)
	out, err := execute(t, a)
	require.NoError(t, err)
	assert.Equal(t, msgNoFilter+"\n", out)
}

func TestSearchByActor(t *testing.T) {
	a, _ := fixtureApp(t)
	out, err := execute(t, a, "-a", "brendan gleeson")
	require.NoError(t, err)

	m, ok := test.LoadCatalog(t).Get("The Grand Seduction")
	require.True(t, ok)
	assert.Equal(t, formatting.MediaRow(m)+"\n", out)
	assert.Contains(t, out, "The Grand Seduction | Movie | Don McKellar | ")
	assert.True(t, strings.HasSuffix(out, " | Amazon Prime, Netflix\n"))
}

func TestSearchCombinedTitles(t *testing.T) {
	a, _ := fixtureApp(t)
	out, err := execute(t, a, "--category", "comedy", "--year", "2021", "--titles")
	require.NoError(t, err)
	assert.Equal(t, "Ricky Velez: Here's Everything\nSilent Night\n", out)
}

func TestSearchNoResults(t *testing.T) {
	a, _ := fixtureApp(t)
	out, err := execute(t, a, "-a", "nobody")
	require.NoError(t, err)
	assert.Equal(t, msgNoResults+"\n", out)
}

func TestSourceOverride(t *testing.T) {
	a, mode := fixtureApp(t)
	_, err := execute(t, a, "-y", "2020")
	require.NoError(t, err)
	assert.Equal(t, cloud.ModeCatalog, *mode)

	_, err = execute(t, a, "-y", "2020", "--source", "sqlite")
	require.NoError(t, err)
	assert.Equal(t, cloud.ModeSQLite, *mode)
}

func TestCategoriesCommand(t *testing.T) {
	a, _ := fixtureApp(t)
	out, err := execute(t, a, "categories")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 11)
	assert.Equal(t, "Animation", lines[0])
}

func TestStatsCommand(t *testing.T) {
	a, _ := fixtureApp(t)
	out, err := execute(t, a, "stats")
	require.NoError(t, err)
	assert.Equal(t, "Netflix | 3\nAmazon Prime | 2\nDisney+ | 1\nHulu | 2\n", out)
}

func TestImportCommand(t *testing.T) {
	a, _ := fixtureApp(t)
	out, err := execute(t, a, "import", "--source", "sqlite")
	require.NoError(t, err)
	assert.Equal(t, "Imported 8 rows into stream_data\n", out)

	config, err := a.configFor(cloud.ModeSQLite)
	require.NoError(t, err)
	s, err := openSQL(context.Background(), config)
	require.NoError(t, err)
	defer s.Close()
	titles, err := s.AllTitles(context.Background())
	require.NoError(t, err)
	assert.Len(t, titles, 7)
}

func TestImportRequiresSQLSource(t *testing.T) {
	a, _ := fixtureApp(t)
	_, err := execute(t, a, "import")
	assert.Error(t, err)
}
