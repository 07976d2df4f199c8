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

// Package api defines the HTTP surface of StreamSearch: plain HTML pages for
// browsers and a JSON API under /api/v1, both answered by a DataSource.
//
// Functions:
//   - NewRouter: Builds the Gin engine with middleware and every route.
//   - Pages: Registers the HTML search pages.
//   - MediaRouter: Registers the JSON media endpoints.
//   - Dashboard: Registers the JSON statistics endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter creates the Gin engine serving ds.
//
// Inputs:
//   - serviceName: The name reported on server spans.
//   - ds: The data source answering every route.
//   - config: The server settings (CORS origins and per-client rate limit).
//
// Outputs:
//   - *gin.Engine: The configured engine, ready to be used as an http.Handler.
func NewRouter(serviceName string, ds services.DataSource, config cloud.Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.CustomRecovery(InternalError))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(corsMiddleware(config.AllowedOrigins))
	r.Use(ClientRateLimit(config.RequestsPerSecond, config.Burst))

	r.NoRoute(NotFound)
	Pages(&r.RouterGroup, ds)

	apiV1 := r.Group("/api/v1")
	{
		MediaRouter(apiV1, ds)
		Dashboard(apiV1, ds)
	}
	return r
}

// corsMiddleware allows every origin when none are configured, which is what
// local development needs.
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	})
}
