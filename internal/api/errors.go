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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const notFoundPage = "Error 404 - Incorrect format.</br></br>" +
	"To use this website, please insert the following into the address: /search/actor/category/year</br>" +
	"actor: The name of an actor to search for in a movie/show's cast.</br>" +
	"category: The category of movie/show to search for.</br>" +
	"year: The results will only include movies released on or after this year.</br></br>" +
	"IMPORTANT: All filters are optional. To omit a filter, replace it with \"-\", \"_\", or \"x\".</br>" +
	"To represent spaces, either type the space normally, or use \"-\", \"_\", or \"%20\".</br></br>" +
	"To view a list of categories available, insert /categories into the address."

const internalErrorPage = "Error 500 - An internal error has occurred.</br></br>" +
	"Please check your input and try again."

// NotFound writes the usage help page with a 404 status.
func NotFound(c *gin.Context) {
	page(c, http.StatusNotFound, notFoundPage)
}

// InternalError is the recovery handler: it logs the panic and writes the
// internal error page with a 500 status.
func InternalError(c *gin.Context, recovered any) {
	slog.ErrorContext(c.Request.Context(), "recovered from panic", "path", c.Request.URL.Path, "panic", recovered)
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(internalErrorPage))
	c.Abort()
}
