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

// This file defines the statistics endpoint backing a dashboard: how many
// titles each streaming service contributes to the catalog.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
)

// Dashboard configures the statistics routes under the given API group.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the "/stats" route group will be added.
//   - ds: The data source the counts are read from.
//
// Routes:
//   - GET /stats: Per-service title counts, in ingestion order, plus the total
//     number of distinct titles.
func Dashboard(r *gin.RouterGroup, ds services.DataSource) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			counts, err := ds.Stats(c.Request.Context())
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "stats failed", "error", err)
				apiError(c, http.StatusInternalServerError, errors.New("stats unavailable"))
				return
			}
			titles, err := ds.AllTitles(c.Request.Context())
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "stats failed", "error", err)
				apiError(c, http.StatusInternalServerError, errors.New("stats unavailable"))
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"services":     counts,
				"total_titles": len(titles),
			})
		})
	}
}
