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

// Package services contains the business logic for interacting with data sources.
// This file, `queries.go`, centralizes the SQL used against the stream_data
// table. Table names are injected with `fmt.Sprintf` (%s); values are always
// bound as query parameters. The relational queries are shared by PostgreSQL
// and SQLite, whose placeholders and case-insensitive LIKE operator are
// supplied by the dialect; the BigQuery queries use named parameters.
package services

const (
	// QryCreateStreamData creates the table holding one row per service export
	// of a title. Multi-valued columns keep their comma-separated form.
	QryCreateStreamData = `CREATE TABLE IF NOT EXISTS %s (
	show_id TEXT,
	media_type TEXT,
	title TEXT NOT NULL,
	director TEXT,
	media_cast TEXT,
	country TEXT,
	date_added TEXT,
	release_year INTEGER,
	rating TEXT,
	duration TEXT,
	category TEXT,
	description TEXT,
	streaming_service TEXT NOT NULL
)`

	// QryInsertStreamData inserts a row. The second placeholder receives the
	// dialect's comma-separated list of 13 parameters.
	QryInsertStreamData = "INSERT INTO %s (show_id, media_type, title, director, media_cast, country, date_added, release_year, rating, duration, category, description, streaming_service) VALUES (%s)"

	// QrySelectStreamData selects every column with NULLs turned into zero values,
	// in the order scanned into a streamRecord.
	QrySelectStreamData = "SELECT COALESCE(show_id, ''), COALESCE(media_type, ''), title, COALESCE(director, ''), COALESCE(media_cast, ''), COALESCE(country, ''), COALESCE(date_added, ''), COALESCE(release_year, 0), COALESCE(rating, ''), COALESCE(duration, ''), COALESCE(category, ''), COALESCE(description, ''), streaming_service FROM %s"

	// QryOrderByRelease is the ordering of every media listing.
	QryOrderByRelease = " ORDER BY release_year DESC, title"

	// QryAllCategories returns the raw category column of every row.
	QryAllCategories = "SELECT category FROM %s WHERE category IS NOT NULL"

	// QryAllActors returns the raw cast column of every row.
	QryAllActors = "SELECT media_cast FROM %s WHERE media_cast IS NOT NULL"

	// QryAllTitles returns every distinct title, newest first.
	QryAllTitles = "SELECT title FROM %s GROUP BY title ORDER BY MAX(release_year) DESC, title"

	// QryServiceCounts counts the distinct titles of each service.
	QryServiceCounts = "SELECT streaming_service, COUNT(DISTINCT title) FROM %s GROUP BY streaming_service"

	// QryBQSelectStreamData is QrySelectStreamData for BigQuery. Column aliases
	// match the bigquery tags of streamRecord.
	QryBQSelectStreamData = "SELECT IFNULL(show_id, '') AS show_id, IFNULL(media_type, '') AS media_type, title, IFNULL(director, '') AS director, IFNULL(media_cast, '') AS media_cast, IFNULL(country, '') AS country, IFNULL(date_added, '') AS date_added, IFNULL(release_year, 0) AS release_year, IFNULL(rating, '') AS rating, IFNULL(duration, '') AS duration, IFNULL(category, '') AS category, IFNULL(description, '') AS description, streaming_service FROM `%s`"

	// QryBQActorClause, QryBQCategoryClause and QryBQYearClause are the
	// BigQuery search predicates, bound to @actor, @category and @year.
	QryBQActorClause    = "STRPOS(LOWER(media_cast), LOWER(@actor)) > 0"
	QryBQCategoryClause = "STRPOS(LOWER(category), LOWER(@category)) > 0"
	QryBQYearClause     = "release_year >= @year"

	// QryBQTitleClause matches a title ignoring case, bound to @title.
	QryBQTitleClause = "LOWER(title) = LOWER(@title)"

	// QryBQDistinctSplit returns the distinct trimmed elements of a
	// comma-separated column, sorted. The first placeholder is the column,
	// the second the table.
	QryBQDistinctSplit = "SELECT DISTINCT TRIM(item) AS value FROM `%[2]s`, UNNEST(SPLIT(%[1]s, ',')) AS item WHERE %[1]s IS NOT NULL AND TRIM(item) != '' ORDER BY value"

	// QryBQAllTitles is QryAllTitles for BigQuery.
	QryBQAllTitles = "SELECT title FROM `%s` GROUP BY title ORDER BY MAX(release_year) DESC, title"

	// QryBQServiceCounts is QryServiceCounts for BigQuery.
	QryBQServiceCounts = "SELECT streaming_service, COUNT(DISTINCT title) AS titles FROM `%s` GROUP BY streaming_service"
)
