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

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-stream-search/internal/api"
	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
	test "github.com/jaycherian/gcp-go-stream-search/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	return api.NewRouter("streamsearch-test", services.NewCatalogSource(test.LoadCatalog(t)), cloud.Server{})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

// failingSource fails every query.
type failingSource struct {
	services.DataSource
}

var errBackend = errors.New("backend down")

func (failingSource) MediaByActor(context.Context, string) ([]*model.Media, error) {
	return nil, errBackend
}

func (failingSource) MediaByCategory(context.Context, string) ([]*model.Media, error) {
	return nil, errBackend
}

func (failingSource) MediaLaterThan(context.Context, int) ([]*model.Media, error) {
	return nil, errBackend
}

func (failingSource) AllCategories(context.Context) ([]string, error) {
	return nil, errBackend
}

func (failingSource) MediaByID(context.Context, string) (*model.Media, error) {
	return nil, errBackend
}

func TestHomepage(t *testing.T) {
	w := get(newRouter(t), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to StreamSearch")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestActorPage(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/actor/BRENDAN_GLEESON")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<b>The Grand Seduction</b> (2014): A small fishing village")

	w = get(r, "/actor/Keira%20Knightley")
	assert.Contains(t, w.Body.String(), "<b>Silent Night</b> (2021)")

	w = get(r, "/actor/UNKNOWN_ACTOR")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No results found for actor: UNKNOWN_ACTOR", w.Body.String())
}

func TestCategoryPage(t *testing.T) {
	w := get(newRouter(t), "/category/Comedy")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"<b>Ricky Velez: Here&#39;s Everything</b> (2021): Comedian Ricky Velez bares it all with his honest lens and down-to-earth humor in his first HBO stand-up special."+
			"</br></br><b>Silent Night</b> (2021): Friends gather for Christmas as the world ends."+
			"</br></br><b>The Grand Seduction</b> (2014): A small fishing village must procure a local doctor to secure a lucrative business contract.",
		w.Body.String())

	w = get(newRouter(t), "/category/Westerns")
	assert.Equal(t, "No movies found in category: Westerns", w.Body.String())
}

func TestYearPage(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/year/2021")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<b>Blood &amp; Water</b> (2021)")
	assert.NotContains(t, w.Body.String(), "Dick Johnson Is Dead")

	w = get(r, "/year/2030")
	assert.Equal(t, "No movies found released in or after 2030.", w.Body.String())

	w = get(r, "/year/recent")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Error 404 - Incorrect format.")
}

func TestSearchPage(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/search/x/drama/2018")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Blood &amp; Water")
	assert.Contains(t, body, "Silent Night")
	assert.Contains(t, body, "Take Care Good Night")
	assert.NotContains(t, body, "The Grand Seduction")

	w = get(r, "/search/keira-knightley/_/-")
	assert.Contains(t, w.Body.String(), "Silent Night")

	w = get(r, "/search/nobody/_/_")
	assert.Equal(t, "No matching results found.", w.Body.String())

	w = get(r, "/search/_/_/_")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Blood &amp; Water</br>Ricky Velez")

	w = get(r, "/search/_/_/soon")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoriesPage(t *testing.T) {
	w := get(newRouter(t), "/categories")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Animation</br>Comedy</br>")
}

func TestErrorPages(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/nonexistent_route")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "To view a list of categories available, insert /categories into the address.")

	w = get(r, "/cause_500")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error 500 - An internal error has occurred.")
}

func TestPagesReportSourceFailures(t *testing.T) {
	r := api.NewRouter("streamsearch-test", failingSource{}, cloud.Server{})

	cases := map[string]string{
		"/actor/Emma_Stone":  "Could not find actor: Emma_Stone",
		"/category/Comedy":   "Could not find movies in category: Comedy",
		"/year/2010":         "Could not find titles released in or after 2010.",
		"/search/x/comedy/x": "Could not complete the search.",
		"/categories":        "Could not list categories.",
	}
	for path, want := range cases {
		w := get(r, path)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.Equal(t, want, w.Body.String(), path)
	}

	w := get(r, "/api/v1/media/abc")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMediaAPI(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/v1/media?category=drama&year=2018")
	require.Equal(t, http.StatusOK, w.Code)
	var media []*model.Media
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &media))
	require.Len(t, media, 3)
	assert.Equal(t, "Blood & Water", media[0].Title)
	assert.Equal(t, []string{"Netflix"}, media[0].Services.Sorted())

	w = get(r, "/api/v1/media?actor=nobody")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = get(r, "/api/v1/media")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/api/v1/media?year=soon")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := model.MediaID("The Grand Seduction")
	w = get(r, "/api/v1/media/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	var m model.Media
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, id, m.Id)
	assert.Equal(t, []string{"Amazon Prime", "Netflix"}, m.Services.Sorted())

	w = get(r, "/api/v1/media/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingAPI(t *testing.T) {
	r := newRouter(t)

	var categories, actors, titles []string
	require.NoError(t, json.Unmarshal(get(r, "/api/v1/categories").Body.Bytes(), &categories))
	require.NoError(t, json.Unmarshal(get(r, "/api/v1/actors").Body.Bytes(), &actors))
	require.NoError(t, json.Unmarshal(get(r, "/api/v1/titles").Body.Bytes(), &titles))
	assert.Len(t, categories, 11)
	assert.Len(t, actors, 15)
	assert.Len(t, titles, 7)
}

func TestStatsAPI(t *testing.T) {
	w := get(newRouter(t), "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"services": [
			{"service": "Netflix", "titles": 3},
			{"service": "Amazon Prime", "titles": 2},
			{"service": "Disney+", "titles": 1},
			{"service": "Hulu", "titles": 2}
		],
		"total_titles": 7
	}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := api.NewRouter("streamsearch-test", services.NewCatalogSource(test.LoadCatalog(t)),
		cloud.Server{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouterRateLimit(t *testing.T) {
	r := api.NewRouter("streamsearch-test", services.NewCatalogSource(test.LoadCatalog(t)),
		cloud.Server{RequestsPerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, get(r, "/").Code)
	assert.Equal(t, http.StatusOK, get(r, "/").Code)
	w := get(r, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
