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

package api

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/filter"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/formatting"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
)

const homepage = `<h1>Welcome to StreamSearch</h1></br></br>
StreamSearch helps you find movies and TV shows based on actor names, categories, and release years.</br></br>
<b>How to Use StreamSearch:</b></br>
- <b>Actor</b>: Enter the name of an actor to find movies or shows they appear in.</br>
- <b>Category</b>: Search by genre or category (e.g., Comedy, Action, Drama).</br>
- <b>Year</b>: Filter results to show movies or shows released on or after a specified year.</br></br>
<b>Example URLs:</b></br>
- /actor/Emma Stone</br>
- /category/Comedy</br>
- /year/2010</br>
- /search/emma-stone/comedy/2010</br>
- /categories</br></br>`

// page writes an HTML body.
func page(c *gin.Context, status int, body string) {
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}

// results writes the matching entries, the empty message when there are
// none, or the failure message with a 500 when the query failed.
func results(c *gin.Context, media []*model.Media, err error, empty, failure string) {
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "search failed", "path", c.Request.URL.Path, "error", err)
		page(c, http.StatusInternalServerError, failure)
		return
	}
	if len(media) == 0 {
		page(c, http.StatusOK, empty)
		return
	}
	page(c, http.StatusOK, formatting.WebEntries(media))
}

// Pages registers the HTML search pages on r.
//
// Inputs:
//   - r: The router group the pages are added to (normally the engine root).
//   - ds: The data source answering the searches.
//
// Routes:
//   - GET /: Usage instructions.
//   - GET /actor/:name, /category/:category, /year/:year: Single-criterion searches.
//   - GET /search/:actor/:category/:year: Combined search; "_", "-" or "x" omits a criterion.
//   - GET /categories: Every category in the catalog.
//   - GET /cause_500: Panics, exercising the internal error page.
func Pages(r *gin.RouterGroup, ds services.DataSource) {
	r.GET("/", func(c *gin.Context) {
		page(c, http.StatusOK, homepage)
	})

	r.GET("/actor/:name", func(c *gin.Context) {
		name := c.Param("name")
		escaped := html.EscapeString(name)
		media, err := ds.MediaByActor(c.Request.Context(), strings.TrimSpace(formatting.ReformatURLInput(name)))
		results(c, media, err,
			"No results found for actor: "+escaped,
			"Could not find actor: "+escaped)
	})

	r.GET("/category/:category", func(c *gin.Context) {
		category := c.Param("category")
		escaped := html.EscapeString(category)
		media, err := ds.MediaByCategory(c.Request.Context(), strings.TrimSpace(formatting.ReformatURLInput(category)))
		results(c, media, err,
			"No movies found in category: "+escaped,
			"Could not find movies in category: "+escaped)
	})

	r.GET("/year/:year", func(c *gin.Context) {
		year, err := strconv.Atoi(c.Param("year"))
		if err != nil {
			NotFound(c)
			return
		}
		media, err := ds.MediaLaterThan(c.Request.Context(), year)
		results(c, media, err,
			fmt.Sprintf("No movies found released in or after %d.", year),
			fmt.Sprintf("Could not find titles released in or after %d.", year))
	})

	r.GET("/search/:actor/:category/:year", func(c *gin.Context) {
		criteria, err := filter.ParseWebCriteria(c.Param("actor"), c.Param("category"), c.Param("year"))
		if err != nil {
			NotFound(c)
			return
		}
		if criteria.IsEmpty() {
			titles, err := ds.AllTitles(c.Request.Context())
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "listing titles failed", "error", err)
				page(c, http.StatusInternalServerError, "Could not list titles.")
				return
			}
			page(c, http.StatusOK, escapedList(titles))
			return
		}
		media, err := services.Search(c.Request.Context(), ds, criteria)
		results(c, media, err, "No matching results found.", "Could not complete the search.")
	})

	r.GET("/categories", func(c *gin.Context) {
		categories, err := ds.AllCategories(c.Request.Context())
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "listing categories failed", "error", err)
			page(c, http.StatusInternalServerError, "Could not list categories.")
			return
		}
		page(c, http.StatusOK, escapedList(categories))
	})

	r.GET("/cause_500", func(c *gin.Context) {
		panic("forced internal error")
	})
}

func escapedList(items []string) string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = html.EscapeString(item)
	}
	return formatting.WebList(out)
}
