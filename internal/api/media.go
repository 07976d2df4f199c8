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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
)

// apiError writes a JSON error body.
func apiError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// MediaRouter sets up the JSON routes for media search and retrieval.
//
// Routes:
//   - GET /media?actor=&category=&year=: Search; at least one criterion is required.
//   - GET /media/:id: A single record by ID.
//   - GET /categories, /actors, /titles: Catalog listings.
func MediaRouter(r *gin.RouterGroup, ds services.DataSource) {
	media := r.Group("/media")
	{
		media.GET("", func(c *gin.Context) {
			criteria := model.Criteria{
				Actor:    strings.TrimSpace(c.Query("actor")),
				Category: strings.TrimSpace(c.Query("category")),
			}
			if year := strings.TrimSpace(c.Query("year")); year != "" {
				y, err := strconv.Atoi(year)
				if err != nil {
					apiError(c, http.StatusBadRequest, errors.New("year must be an integer"))
					return
				}
				criteria.Year = y
			}
			out, err := services.Search(c.Request.Context(), ds, criteria)
			if errors.Is(err, services.ErrNoCriteria) {
				apiError(c, http.StatusBadRequest, err)
				return
			}
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "media search failed", "criteria", criteria, "error", err)
				apiError(c, http.StatusInternalServerError, errors.New("search failed"))
				return
			}
			if out == nil {
				out = []*model.Media{}
			}
			c.JSON(http.StatusOK, out)
		})

		media.GET("/:id", func(c *gin.Context) {
			out, err := ds.MediaByID(c.Request.Context(), c.Param("id"))
			if errors.Is(err, services.ErrNotFound) {
				apiError(c, http.StatusNotFound, err)
				return
			}
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "media lookup failed", "id", c.Param("id"), "error", err)
				apiError(c, http.StatusInternalServerError, errors.New("lookup failed"))
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}

	r.GET("/categories", listing(ds.AllCategories))
	r.GET("/actors", listing(ds.AllActors))
	r.GET("/titles", listing(ds.AllTitles))
}

// listing serves a list of strings produced by fetch.
func listing(fetch func(ctx context.Context) ([]string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := fetch(c.Request.Context())
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "listing failed", "path", c.Request.URL.Path, "error", err)
			apiError(c, http.StatusInternalServerError, errors.New("listing failed"))
			return
		}
		if out == nil {
			out = []string{}
		}
		c.JSON(http.StatusOK, out)
	}
}
