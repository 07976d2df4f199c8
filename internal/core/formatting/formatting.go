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

// Package formatting contains the small helpers shared by the presentation
// adapters: interpreting URL path inputs and rendering media records as
// delimited text (CLI) or HTML fragments (web pages).
package formatting

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
)

// Separators used by the presentation adapters.
const (
	WebLineBreak   = "</br>"
	WebEntryBreak  = "</br></br>"
	FieldSeparator = " | "
)

// placeholders are the URL inputs that mean "this filter is not used".
var placeholders = map[string]struct{}{"_": {}, "-": {}, "x": {}}

// spaceMarkers are the URL spellings accepted for a space.
var spaceMarkers = regexp.MustCompile(`%20|-|_`)

// lineBreaks matches any line break embedded in a title.
var lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)

// URLInputNotNull reports whether a URL path input carries a search term, as
// opposed to one of the placeholders used to omit a filter.
func URLInputNotNull(searchTerm string) bool {
	_, omitted := placeholders[searchTerm]
	return !omitted
}

// ReformatURLInput turns the URL spellings of a space back into spaces and
// lower-cases the result.
func ReformatURLInput(searchTerm string) string {
	return strings.ToLower(spaceMarkers.ReplaceAllString(searchTerm, " "))
}

// WebList joins items with the HTML line break used by the web pages.
func WebList(items []string) string {
	return strings.Join(items, WebLineBreak)
}

// WebEntry renders one media record as `<b>Title</b> (Year): Description`.
func WebEntry(m *model.Media) string {
	return fmt.Sprintf("<b>%s</b> (%d): %s", html.EscapeString(m.Title), m.ReleaseYear, html.EscapeString(m.Description))
}

// WebEntries renders media records separated by a blank line.
func WebEntries(media []*model.Media) string {
	entries := make([]string, 0, len(media))
	for _, m := range media {
		entries = append(entries, WebEntry(m))
	}
	return strings.Join(entries, WebEntryBreak)
}

// MediaRow renders every field of a record on one line, separated by " | ".
func MediaRow(m *model.Media) string {
	fields := []string{
		m.Title,
		m.MediaType,
		m.Director.String(),
		m.Cast.String(),
		m.Country.String(),
		m.DateAdded,
		strconv.Itoa(m.ReleaseYear),
		m.Rating,
		m.Duration,
		m.Categories.String(),
		m.Description,
		m.Services.String(),
	}
	return strings.Join(fields, FieldSeparator)
}

// MediaVerbose renders a labeled, multi-line description of a record.
func MediaVerbose(m *model.Media) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", m.Title)
	fmt.Fprintf(&b, "Show ID: %s\n", m.ShowId)
	fmt.Fprintf(&b, "Media Type: %s\n", m.MediaType)
	fmt.Fprintf(&b, "Director: %s\n", m.Director)
	fmt.Fprintf(&b, "Cast: %s\n", m.Cast)
	fmt.Fprintf(&b, "Country: %s\n", m.Country)
	fmt.Fprintf(&b, "Date Added: %s\n", m.DateAdded)
	fmt.Fprintf(&b, "Release Year: %d\n", m.ReleaseYear)
	fmt.Fprintf(&b, "Rating: %s\n", m.Rating)
	fmt.Fprintf(&b, "Duration: %s\n", m.Duration)
	fmt.Fprintf(&b, "Listed In: %s\n", m.Categories)
	fmt.Fprintf(&b, "Description: %s\n", m.Description)
	fmt.Fprintf(&b, "Streaming Services: %s", m.Services)
	return b.String()
}

// UnescapeTitle decodes HTML entities in a stored title and removes any
// embedded line breaks.
func UnescapeTitle(title string) string {
	return html.UnescapeString(lineBreaks.ReplaceAllString(title, ""))
}
