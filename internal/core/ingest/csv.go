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

// Package ingest reads the streaming services' CSV exports into raw rows and
// converts them into media records.
//
// This file, `csv.go`, parses a single export. Columns are located by their
// header name, so exports that order or omit columns differently are read the
// same way. Payloads that are recognizably binary (archives, images, ...) are
// rejected before parsing.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
)

// Column names used by the CSV exports.
const (
	ColShowID      = "show_id"
	ColType        = "type"
	ColTitle       = "title"
	ColDirector    = "director"
	ColCast        = "cast"
	ColCountry     = "country"
	ColDateAdded   = "date_added"
	ColReleaseYear = "release_year"
	ColRating      = "rating"
	ColDuration    = "duration"
	ColListedIn    = "listed_in"
	ColDescription = "description"
)

// sniffLength is the number of leading bytes filetype needs to identify a type.
const sniffLength = 262

var (
	// ErrBinarySource is returned when an export is a known binary format.
	ErrBinarySource = errors.New("source is not a CSV export")
	// ErrMissingTitleColumn is returned when an export has no title column.
	ErrMissingTitleColumn = errors.New("export has no title column")
	// ErrInvalidYear is returned when a release year is not a number.
	ErrInvalidYear = errors.New("invalid release year")
)

// ReadRows reads every data row of a CSV export and tags it with its service.
// Rows without a title are skipped.
//
// Inputs:
//   - r: The export content. The first record must be the header row.
//   - service: The streaming service the export belongs to.
//
// Outputs:
//   - []model.Row: The rows in file order.
//   - error: ErrBinarySource, ErrMissingTitleColumn or a CSV parse error.
func ReadRows(r io.Reader, service model.StreamingService) ([]model.Row, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, err := br.Peek(sniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read %s export: %w", service, err)
	}
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		return nil, fmt.Errorf("%s export looks like %s: %w", service, kind.MIME.Value, ErrBinarySource)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s export is empty: %w", service, ErrMissingTitleColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", service, err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	}
	if !containsColumn(columns, ColTitle) {
		return nil, fmt.Errorf("%s: %w", service, ErrMissingTitleColumn)
	}

	rows := make([]model.Row, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s export: %w", service, err)
		}
		fields := make(map[string]string, len(columns))
		for i, value := range record {
			if i < len(columns) {
				fields[columns[i]] = strings.TrimSpace(value)
			}
		}
		if fields[ColTitle] == "" {
			continue
		}
		rows = append(rows, model.Row{Service: service, Fields: fields})
	}
	return rows, nil
}

func containsColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

// ToMedia converts a raw row into a media record. Comma-separated columns
// become sets and the row's service becomes the record's only service.
// An empty release year is left as zero.
//
// Inputs:
//   - row: The raw export row.
//
// Outputs:
//   - *model.Media: The record.
//   - error: ErrInvalidYear when release_year is not a number.
func ToMedia(row model.Row) (*model.Media, error) {
	m := model.NewMedia(row.Get(ColTitle))
	m.ShowId = row.Get(ColShowID)
	m.MediaType = row.Get(ColType)
	m.Director = model.MakeSet(row.Get(ColDirector))
	m.Cast = model.MakeSet(row.Get(ColCast))
	m.Country = model.MakeSet(row.Get(ColCountry))
	m.DateAdded = row.Get(ColDateAdded)
	m.Rating = row.Get(ColRating)
	m.Duration = row.Get(ColDuration)
	m.Categories = model.MakeSet(row.Get(ColListedIn))
	m.Description = row.Get(ColDescription)
	m.Services.Add(string(row.Service))

	if year := row.Get(ColReleaseYear); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return nil, fmt.Errorf("%q on %s: %w: %q", m.Title, row.Service, ErrInvalidYear, year)
		}
		m.ReleaseYear = y
	}
	return m, nil
}
