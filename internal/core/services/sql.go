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
// This file, `sql.go`, implements `SQLSource`, which answers catalog queries
// from a stream_data table in PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite).
//
// Search predicates are composed: every supplied criterion appends one
// parameterized condition to the WHERE clause, so the combined search is the
// conjunction of the single-criterion ones.
package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/formatting"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"

	_ "github.com/lib/pq"
	"modernc.org/sqlite"
)

// unicodeLower is the SQLite function that lower-cases with Go's Unicode
// tables. The built-in lower() and LIKE only fold ASCII.
const unicodeLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(unicodeLower, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// Dialect holds what differs between the supported SQL databases.
type Dialect struct {
	Name        string           // Name used in configuration.
	Driver      string           // database/sql driver name.
	Like        string           // Case-insensitive LIKE operator.
	Lower       string           // Function lower-casing a column.
	Placeholder func(int) string // Returns the n-th (1-based) parameter placeholder.
}

var (
	// Postgres uses lib/pq with ILIKE and $n placeholders.
	Postgres = Dialect{
		Name:        "postgres",
		Driver:      "postgres",
		Like:        "ILIKE",
		Lower:       "LOWER",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
	// SQLite uses modernc.org/sqlite. Its LIKE ignores ASCII case only, so
	// columns go through unicode_lower first.
	SQLite = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite",
		Like:        "LIKE",
		Lower:       unicodeLower,
		Placeholder: func(int) string { return "?" },
	}
)

// DialectByName returns the dialect configured as name.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported SQL dialect %q", name)
}

// identifier matches the table names accepted in queries.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// likeEscaper makes \, % and _ match literally in a LIKE ... ESCAPE '\' pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeValue is the bound value for contains: trimmed, lower-cased and escaped.
func likeValue(s string) string {
	return likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// contains returns a condition matching column values that contain the
// parameter at argNum, ignoring case.
func (d Dialect) contains(column string, argNum int) string {
	return " AND " + d.Lower + "(" + column + ") " + d.Like + " '%' || " + d.Placeholder(argNum) + ` || '%' ESCAPE '\'`
}

// WhereClause builds the WHERE clause for the supplied criteria. Actor and
// category are matched as literal substrings; LIKE wildcards in them are
// escaped.
//
// Inputs:
//   - criteria: The search criteria. Unset criteria contribute nothing.
//
// Outputs:
//   - string: The clause, starting with " WHERE 1=1".
//   - []any: The parameters in placeholder order.
func (d Dialect) WhereClause(criteria model.Criteria) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	argNum := 1
	if criteria.HasActor() {
		where += d.contains("media_cast", argNum)
		args = append(args, likeValue(criteria.Actor))
		argNum++
	}
	if criteria.HasCategory() {
		where += d.contains("category", argNum)
		args = append(args, likeValue(criteria.Category))
		argNum++
	}
	if criteria.HasYear() {
		where += " AND release_year >= " + d.Placeholder(argNum)
		args = append(args, criteria.Year)
	}
	return where, args
}

// SQLSource answers catalog queries from a relational table.
type SQLSource struct {
	DB      *sql.DB
	Dialect Dialect
	Table   string
}

// NewSQLSource wraps an open database.
//
// Inputs:
//   - db: The open database handle; closed by Close.
//   - dialect: The database's dialect.
//   - table: The table name, optionally schema-qualified.
//
// Outputs:
//   - *SQLSource: The source.
//   - error: An error if the table name is not a plain identifier.
func NewSQLSource(db *sql.DB, dialect Dialect, table string) (*SQLSource, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLSource{DB: db, Dialect: dialect, Table: table}, nil
}

// OpenSQLSource opens and pings the database described by dsn.
func OpenSQLSource(ctx context.Context, dialect Dialect, dsn string, table string) (*SQLSource, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect.Name, err)
	}
	s, err := NewSQLSource(db, dialect, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// CreateSchema creates the table if it does not exist.
func (s *SQLSource) CreateSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, fmt.Sprintf(QryCreateStreamData, s.Table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.Table, err)
	}
	return nil
}

// Import inserts the rows of every export in a single transaction. Rows with
// an unreadable release year are skipped with a warning.
//
// Inputs:
//   - ctx: The context for the import.
//   - rowsByService: Rows read from each export.
//
// Outputs:
//   - int: The number of rows inserted.
//   - error: An error if any insert fails; nothing is inserted then.
func (s *SQLSource) Import(ctx context.Context, rowsByService []ingest.ServiceRows) (inserted int, err error) {
	placeholders := make([]string, 13)
	for i := range placeholders {
		placeholders[i] = s.Dialect.Placeholder(i + 1)
	}
	query := fmt.Sprintf(QryInsertStreamData, s.Table, strings.Join(placeholders, ", "))

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, group := range rowsByService {
		for _, row := range group.Rows {
			var year any
			if raw := row.Get(ingest.ColReleaseYear); raw != "" {
				y, convErr := strconv.Atoi(raw)
				if convErr != nil {
					slog.Warn("skipping row", "service", row.Service, "title", row.Get(ingest.ColTitle), "error", ingest.ErrInvalidYear)
					continue
				}
				year = y
			}
			_, err = stmt.ExecContext(ctx,
				nullable(row.Get(ingest.ColShowID)),
				nullable(row.Get(ingest.ColType)),
				row.Get(ingest.ColTitle),
				nullable(row.Get(ingest.ColDirector)),
				nullable(row.Get(ingest.ColCast)),
				nullable(row.Get(ingest.ColCountry)),
				nullable(row.Get(ingest.ColDateAdded)),
				year,
				nullable(row.Get(ingest.ColRating)),
				nullable(row.Get(ingest.ColDuration)),
				nullable(row.Get(ingest.ColListedIn)),
				nullable(row.Get(ingest.ColDescription)),
				string(row.Service),
			)
			if err != nil {
				return 0, fmt.Errorf("failed to insert %q: %w", row.Get(ingest.ColTitle), err)
			}
			inserted++
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// nullable stores empty columns as NULL, the way the exports mean them.
func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func (s *SQLSource) queryMedia(ctx context.Context, where string, args []any) ([]*model.Media, error) {
	query := fmt.Sprintf(QrySelectStreamData, s.Table) + where + QryOrderByRelease
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var records []*streamRecord
	for rows.Next() {
		r := &streamRecord{}
		if err := rows.Scan(&r.ShowId, &r.MediaType, &r.Title, &r.Director, &r.Cast, &r.Country,
			&r.DateAdded, &r.ReleaseYear, &r.Rating, &r.Duration, &r.Category, &r.Description, &r.Service); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.Table, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mergeRecords(records), nil
}

func (s *SQLSource) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLSource) MediaByActor(ctx context.Context, actor string) ([]*model.Media, error) {
	return s.MediaByAdvancedFilter(ctx, model.Criteria{Actor: actor})
}

func (s *SQLSource) MediaByCategory(ctx context.Context, category string) ([]*model.Media, error) {
	return s.MediaByAdvancedFilter(ctx, model.Criteria{Category: category})
}

func (s *SQLSource) MediaLaterThan(ctx context.Context, year int) ([]*model.Media, error) {
	return s.MediaByAdvancedFilter(ctx, model.Criteria{Year: year})
}

// MediaByAdvancedFilter composes a WHERE clause from the supplied criteria.
func (s *SQLSource) MediaByAdvancedFilter(ctx context.Context, criteria model.Criteria) ([]*model.Media, error) {
	where, args := s.Dialect.WhereClause(criteria)
	return s.queryMedia(ctx, where, args)
}

func (s *SQLSource) AllCategories(ctx context.Context) ([]string, error) {
	values, err := s.queryStrings(ctx, fmt.Sprintf(QryAllCategories, s.Table))
	if err != nil {
		return nil, err
	}
	return splitDistinct(values), nil
}

func (s *SQLSource) AllActors(ctx context.Context) ([]string, error) {
	values, err := s.queryStrings(ctx, fmt.Sprintf(QryAllActors, s.Table))
	if err != nil {
		return nil, err
	}
	return splitDistinct(values), nil
}

func (s *SQLSource) AllTitles(ctx context.Context) ([]string, error) {
	titles, err := s.queryStrings(ctx, fmt.Sprintf(QryAllTitles, s.Table))
	if err != nil {
		return nil, err
	}
	for i, title := range titles {
		titles[i] = formatting.UnescapeTitle(title)
	}
	return titles, nil
}

// MediaByTitle matches the title ignoring case.
func (s *SQLSource) MediaByTitle(ctx context.Context, title string) (*model.Media, error) {
	where := " WHERE " + s.Dialect.Lower + "(title) = " + s.Dialect.Placeholder(1)
	media, err := s.queryMedia(ctx, where, []any{strings.ToLower(title)})
	if err != nil {
		return nil, err
	}
	if len(media) == 0 {
		return nil, ErrNotFound
	}
	return media[0], nil
}

// MediaByID resolves the ID against the stored titles, since IDs are derived
// from titles rather than stored.
func (s *SQLSource) MediaByID(ctx context.Context, id string) (*model.Media, error) {
	titles, err := s.queryStrings(ctx, fmt.Sprintf(QryAllTitles, s.Table))
	if err != nil {
		return nil, err
	}
	title, ok := titleForID(titles, id)
	if !ok {
		return nil, ErrNotFound
	}
	where := " WHERE title = " + s.Dialect.Placeholder(1)
	media, err := s.queryMedia(ctx, where, []any{title})
	if err != nil {
		return nil, err
	}
	if len(media) == 0 {
		return nil, ErrNotFound
	}
	return media[0], nil
}

func (s *SQLSource) Stats(ctx context.Context) ([]model.ServiceCount, error) {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(QryServiceCounts, s.Table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.Table, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var service string
		var n int
		if err := rows.Scan(&service, &n); err != nil {
			return nil, err
		}
		counts[service] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orderStats(counts), nil
}

// Close closes the database.
func (s *SQLSource) Close() error {
	if s.DB == nil {
		return errors.New("database already closed")
	}
	err := s.DB.Close()
	s.DB = nil
	return err
}
