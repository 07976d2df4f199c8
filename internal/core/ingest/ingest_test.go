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

package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	test "github.com/jaycherian/gcp-go-stream-search/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = "\ufeffshow_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description\n" +
	"s1,Movie,Title A,Director A,\"Actor X, Actor Y\",United States,\"January 1, 2021\",2022,PG,90 min,\"Action, Drama\",An action movie.\n" +
	"s2,Movie,,Director B,Actor Z,,,2020,,,Comedy,No title.\n" +
	"s3,TV Show,Title C,,,,,2019,,1 Season,Documentaries,\n"

func TestReadRows(t *testing.T) {
	rows, err := ingest.ReadRows(strings.NewReader(export), model.Netflix)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, model.Netflix, rows[0].Service)
	assert.Equal(t, "s1", rows[0].Get(ingest.ColShowID))
	assert.Equal(t, "Title A", rows[0].Get(ingest.ColTitle))
	assert.Equal(t, "Actor X, Actor Y", rows[0].Get(ingest.ColCast))
	assert.Equal(t, "Title C", rows[1].Get(ingest.ColTitle))
	assert.Equal(t, "", rows[1].Get("not_a_column"))
}

func TestReadRowsColumnOrder(t *testing.T) {
	in := "Title,Release_Year,Cast\nTitle B,2021,Actor Z\n"
	rows, err := ingest.ReadRows(strings.NewReader(in), model.Hulu)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2021", rows[0].Get(ingest.ColReleaseYear))
	assert.Equal(t, "Actor Z", rows[0].Get(ingest.ColCast))
}

func TestReadRowsRejectsBinary(t *testing.T) {
	zip := append([]byte{0x50, 0x4B, 0x03, 0x04}, bytes.Repeat([]byte{0}, 300)...)
	_, err := ingest.ReadRows(bytes.NewReader(zip), model.Netflix)
	assert.True(t, errors.Is(err, ingest.ErrBinarySource))

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0}, 10)...)
	_, err = ingest.ReadRows(bytes.NewReader(png), model.Netflix)
	assert.True(t, errors.Is(err, ingest.ErrBinarySource))
}

func TestReadRowsMissingTitle(t *testing.T) {
	_, err := ingest.ReadRows(strings.NewReader("show_id,cast\ns1,Actor X\n"), model.DisneyPlus)
	assert.True(t, errors.Is(err, ingest.ErrMissingTitleColumn))

	_, err = ingest.ReadRows(strings.NewReader(""), model.DisneyPlus)
	assert.True(t, errors.Is(err, ingest.ErrMissingTitleColumn))
}

func TestToMedia(t *testing.T) {
	rows, err := ingest.ReadRows(strings.NewReader(export), model.AmazonPrime)
	require.NoError(t, err)

	m, err := ingest.ToMedia(rows[0])
	require.NoError(t, err)
	assert.Equal(t, model.MediaID("Title A"), m.Id)
	assert.Equal(t, "Movie", m.MediaType)
	assert.Equal(t, 2022, m.ReleaseYear)
	assert.Equal(t, []string{"Actor X", "Actor Y"}, m.Cast.Sorted())
	assert.Equal(t, []string{"Action", "Drama"}, m.Categories.Sorted())
	assert.Equal(t, []string{"Amazon Prime"}, m.Services.Sorted())
	assert.Empty(t, rows[1].Get(ingest.ColDirector))

	c, err := ingest.ToMedia(rows[1])
	require.NoError(t, err)
	assert.Empty(t, c.Cast)
	assert.Empty(t, c.Director)
}

func TestToMediaInvalidYear(t *testing.T) {
	row := model.Row{Service: model.Hulu, Fields: map[string]string{"title": "Title D", "release_year": "unknown"}}
	_, err := ingest.ToMedia(row)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ingest.ErrInvalidYear))
	assert.Contains(t, err.Error(), "Title D")
	assert.Contains(t, err.Error(), "Hulu")

	row.Fields["release_year"] = ""
	m, err := ingest.ToMedia(row)
	require.NoError(t, err)
	assert.Equal(t, 0, m.ReleaseYear)
}

func TestLoadAll(t *testing.T) {
	rows, err := ingest.NewLoader(nil).LoadAll(context.Background(), test.Sources())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	counts := map[model.StreamingService]int{}
	for _, group := range rows {
		counts[group.Service] = len(group.Rows)
	}
	assert.Equal(t, map[model.StreamingService]int{
		model.Netflix:     3,
		model.AmazonPrime: 2,
		model.DisneyPlus:  1,
		model.Hulu:        2,
	}, counts)
	assert.Equal(t, model.Netflix, rows[0].Service)
}

func TestLoadAllMissingFile(t *testing.T) {
	sources := []ingest.Source{{Service: model.Netflix, Location: "does/not/exist.csv"}}
	_, err := ingest.NewLoader(nil).LoadAll(context.Background(), sources)
	assert.Error(t, err)
}

func TestLoadGCSWithoutClient(t *testing.T) {
	_, err := ingest.NewLoader(nil).Load(context.Background(), ingest.Source{
		Service:  model.Netflix,
		Location: "gs://streamsearch-exports/netflix_titles.csv",
	})
	assert.Error(t, err)
}

type memOpener map[string]string

func (m memOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m[location])), nil
}

func TestLoadGCSThroughOpener(t *testing.T) {
	loader := &ingest.Loader{GCS: memOpener{"gs://b/hulu_titles.csv": export}}
	rows, err := loader.Load(context.Background(), ingest.Source{Service: model.Hulu, Location: "gs://b/hulu_titles.csv"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSources(t *testing.T) {
	sources := ingest.DefaultSources("gs://streamsearch-exports/")
	require.Len(t, sources, 4)
	assert.Equal(t, "gs://streamsearch-exports/netflix_titles.csv", sources[0].Location)
	assert.Equal(t, model.Hulu, sources[3].Service)

	config := cloud.NewConfig()
	config.CSVExports.DataDir = "Data"
	config.CSVExports.Sources["Disney+"] = "gs://other/disney.csv"
	sources = ingest.SourcesFromConfig(config)
	assert.Equal(t, "Data/netflix_titles.csv", sources[0].Location)
	assert.Equal(t, "gs://other/disney.csv", sources[2].Location)

	service, ok := ingest.ServiceForObject("exports/amazon_prime_titles.csv")
	assert.True(t, ok)
	assert.Equal(t, model.AmazonPrime, service)
	_, ok = ingest.ServiceForObject("movie.mp4")
	assert.False(t, ok)
}
