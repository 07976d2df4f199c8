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

// Package model_test contains unit tests for the data models defined in the
// model package.
package model_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestNewMedia verifies that the ID is a UUIDv5 hash of the title and that
// every set field starts out initialized and empty.
func TestNewMedia(t *testing.T) {
	title := "The Grand Seduction"
	media := model.NewMedia(title)

	generatedID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(title))

	assert.Equal(t, generatedID.String(), media.Id)
	assert.Equal(t, title, media.Title)
	assert.Equal(t, 0, len(media.Cast))
	assert.Equal(t, 0, len(media.Categories))
	assert.Equal(t, 0, len(media.Services))
	assert.NotNil(t, media.Director)
	assert.NotNil(t, media.Country)
}

func TestMakeSet(t *testing.T) {
	s := model.MakeSet("Actor X, Actor Y,  Actor X , ")
	assert.Equal(t, []string{"Actor X", "Actor Y"}, s.Sorted())
	assert.Empty(t, model.MakeSet(""))
	assert.Equal(t, "Actor X, Actor Y", s.String())
}

func TestStringSetContainsFold(t *testing.T) {
	s := model.NewStringSet("Brendan Gleeson", "Taylor Kitsch")

	assert.True(t, s.ContainsFold("brendan gleeson"))
	assert.True(t, s.ContainsFold("GLEESON"))
	assert.False(t, s.ContainsFold("Liam Neeson"))
	assert.False(t, model.NewStringSet().ContainsFold("anyone"))
}

// TestMediaMerge checks that a title seen on a second service keeps its
// first-seen scalar values and gains the new service.
func TestMediaMerge(t *testing.T) {
	first := model.NewMedia("Silent Night")
	first.ReleaseYear = 2020
	first.Description = "first"
	first.Services.Add(string(model.Netflix))
	first.Cast.Add("Keira Knightley")

	second := model.NewMedia("Silent Night")
	second.ReleaseYear = 2021
	second.Description = "second"
	second.Services.Add(string(model.Hulu))
	second.Cast.Add("Roman Griffin Davis")
	second.Rating = "R"

	first.Merge(second)

	assert.Equal(t, 2020, first.ReleaseYear)
	assert.Equal(t, "first", first.Description)
	assert.Equal(t, "R", first.Rating)
	assert.Equal(t, []string{"Hulu", "Netflix"}, first.Services.Sorted())
	assert.Equal(t, []string{"Keira Knightley", "Roman Griffin Davis"}, first.Cast.Sorted())
}

func TestMediaCloneIsIndependent(t *testing.T) {
	m := model.NewMedia("Title A")
	m.Services.Add("Netflix")

	c := m.Clone()
	c.Services.Add("Hulu")

	assert.Equal(t, []string{"Netflix"}, m.Services.Sorted())
	assert.Equal(t, []string{"Hulu", "Netflix"}, c.Services.Sorted())
}

func TestStringSetJSON(t *testing.T) {
	m := model.NewMedia("Title A")
	m.Categories = model.NewStringSet("Drama", "Action")

	data, err := json.Marshal(m)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"listed_in":["Action","Drama"]`)

	var decoded model.Media
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Categories.Contains("Drama"))
}

func TestCriteriaCount(t *testing.T) {
	assert.True(t, model.Criteria{}.IsEmpty())
	assert.Equal(t, 1, model.Criteria{Actor: "Actor X"}.Count())
	assert.Equal(t, 3, model.Criteria{Actor: "a", Category: "b", Year: 2020}.Count())
}
