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

package catalog_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	test "github.com/jaycherian/gcp-go-stream-search/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMergesDuplicateTitles(t *testing.T) {
	c := test.LoadCatalog(t)

	assert.Equal(t, 7, c.Len())
	assert.Equal(t, []string{
		"Blood & Water",
		"Dick Johnson Is Dead",
		"Duck the Halls: A Mickey Mouse Christmas Special",
		"Ricky Velez: Here's Everything",
		"Silent Night",
		"Take Care Good Night",
		"The Grand Seduction",
	}, c.Titles())

	m, ok := c.Get("The Grand Seduction")
	require.True(t, ok)
	assert.Equal(t, []string{"Amazon Prime", "Netflix"}, m.Services.Sorted())
	assert.Equal(t, 2014, m.ReleaseYear)
	assert.Equal(t, "s3", m.ShowId, "scalar fields keep the first export's value")
}

func TestGetReturnsCopy(t *testing.T) {
	c := test.LoadCatalog(t)
	m, ok := c.Get("Silent Night")
	require.True(t, ok)
	m.Cast.Add("Someone Else")

	again, _ := c.Get("Silent Night")
	assert.False(t, again.Cast.Contains("Someone Else"))

	_, ok = c.Get("Missing")
	assert.False(t, ok)
}

func TestGetByID(t *testing.T) {
	c := test.LoadCatalog(t)
	m, ok := c.GetByID(model.MediaID("Blood & Water"))
	require.True(t, ok)
	assert.Equal(t, "Blood & Water", m.Title)

	_, ok = c.GetByID("nope")
	assert.False(t, ok)
}

func TestCategoriesAndActors(t *testing.T) {
	c := test.LoadCatalog(t)
	assert.Equal(t, []string{
		"Animation", "Comedy", "Documentaries", "Drama", "Family", "Horror", "International",
		"International TV Shows", "Stand Up", "TV Dramas", "TV Mysteries",
	}, c.Categories())

	actors := c.Actors()
	assert.Len(t, actors, 15)
	assert.Contains(t, actors, "Brendan Gleeson")
	assert.Contains(t, actors, "Tony Anselmo")
}

func TestStats(t *testing.T) {
	c := test.LoadCatalog(t)
	assert.Equal(t, []model.ServiceCount{
		{Service: "Netflix", Titles: 3},
		{Service: "Amazon Prime", Titles: 2},
		{Service: "Disney+", Titles: 1},
		{Service: "Hulu", Titles: 2},
	}, c.Stats())
}

func TestSnapshotIsIndependent(t *testing.T) {
	c := test.LoadCatalog(t)
	snap := c.Snapshot()
	delete(snap, "Silent Night")
	assert.Equal(t, 7, c.Len())
	assert.Len(t, snap, 6)
}

func TestBuildSkipsInvalidYear(t *testing.T) {
	rows := []ingest.ServiceRows{{
		Service: model.Hulu,
		Rows: []model.Row{
			{Service: model.Hulu, Fields: map[string]string{"title": "Good", "release_year": "2020"}},
			{Service: model.Hulu, Fields: map[string]string{"title": "Bad", "release_year": "20x0"}},
		},
	}}
	c, skipped := catalog.Build(rows)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"Good"}, c.Titles())
}

func TestReplace(t *testing.T) {
	c := catalog.New()
	assert.Equal(t, 0, c.Len())

	c.Replace(test.LoadCatalog(t))
	assert.Equal(t, 7, c.Len())
	_, ok := c.GetByID(model.MediaID("Silent Night"))
	assert.True(t, ok)
}
