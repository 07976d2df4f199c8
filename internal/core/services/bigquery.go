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
// This file, `bigquery.go`, defines the BigQuerySource, which answers catalog
// queries from a stream_data table in BigQuery. Search predicates are the
// same composable conditions as the relational source, written in BigQuery
// standard SQL with named query parameters.
package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/formatting"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"google.golang.org/api/iterator"
)

// BigQuerySource encapsulates the client and table needed to query the
// combined catalog in BigQuery.
type BigQuerySource struct {
	BigqueryClient *bigquery.Client // Client for interacting with Google BigQuery.
	DatasetName    string           // The name of the BigQuery dataset (e.g., "streamsearch_ds").
	MediaTable     string           // The name of the table holding the combined catalog.
}

// GetFQN (Get Fully Qualified Name) returns the queryable name of the table,
// formatted with dots instead of colons (e.g., `gcp-project-id.streamsearch_ds.stream_data`).
func (s *BigQuerySource) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.MediaTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// BigQueryWhereClause builds the WHERE clause and named parameters for the
// supplied criteria.
//
// Inputs:
//   - criteria: The search criteria. Unset criteria contribute nothing.
//
// Outputs:
//   - string: The clause, starting with " WHERE TRUE".
//   - []bigquery.QueryParameter: The parameters referenced by the clause.
func BigQueryWhereClause(criteria model.Criteria) (string, []bigquery.QueryParameter) {
	where := " WHERE TRUE"
	var params []bigquery.QueryParameter
	if criteria.HasActor() {
		where += " AND " + QryBQActorClause
		params = append(params, bigquery.QueryParameter{Name: "actor", Value: strings.TrimSpace(criteria.Actor)})
	}
	if criteria.HasCategory() {
		where += " AND " + QryBQCategoryClause
		params = append(params, bigquery.QueryParameter{Name: "category", Value: strings.TrimSpace(criteria.Category)})
	}
	if criteria.HasYear() {
		where += " AND " + QryBQYearClause
		params = append(params, bigquery.QueryParameter{Name: "year", Value: criteria.Year})
	}
	return where, params
}

// read runs a query and returns the iterator over its rows.
func (s *BigQuerySource) read(ctx context.Context, queryText string, params []bigquery.QueryParameter) (*bigquery.RowIterator, error) {
	q := s.BigqueryClient.Query(queryText)
	q.Parameters = params
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read from BigQuery: %w", err)
	}
	return itr, nil
}

func (s *BigQuerySource) queryMedia(ctx context.Context, where string, params []bigquery.QueryParameter) ([]*model.Media, error) {
	itr, err := s.read(ctx, fmt.Sprintf(QryBQSelectStreamData, s.GetFQN())+where+QryOrderByRelease, params)
	if err != nil {
		return nil, err
	}
	var records []*streamRecord
	for {
		r := &streamRecord{}
		err := itr.Next(r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate results: %w", err)
		}
		records = append(records, r)
	}
	return mergeRecords(records), nil
}

func (s *BigQuerySource) queryStrings(ctx context.Context, queryText string) ([]string, error) {
	itr, err := s.read(ctx, queryText, nil)
	if err != nil {
		return nil, err
	}
	var out []string
	for {
		var row []bigquery.Value
		err := itr.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate results: %w", err)
		}
		if len(row) > 0 && row[0] != nil {
			out = append(out, fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

func (s *BigQuerySource) MediaByActor(ctx context.Context, actor string) ([]*model.Media, error) {
	return s.MediaByAdvancedFilter(ctx, model.Criteria{Actor: actor})
}

func (s *BigQuerySource) MediaByCategory(ctx context.Context, category string) ([]*model.Media, error) {
	return s.MediaByAdvancedFilter(ctx, model.Criteria{Category: category})
}

func (s *BigQuerySource) MediaLaterThan(ctx context.Context, year int) ([]*model.Media, error) {
	return s.MediaByAdvancedFilter(ctx, model.Criteria{Year: year})
}

func (s *BigQuerySource) MediaByAdvancedFilter(ctx context.Context, criteria model.Criteria) ([]*model.Media, error) {
	where, params := BigQueryWhereClause(criteria)
	return s.queryMedia(ctx, where, params)
}

func (s *BigQuerySource) AllCategories(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, fmt.Sprintf(QryBQDistinctSplit, "category", s.GetFQN()))
}

func (s *BigQuerySource) AllActors(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, fmt.Sprintf(QryBQDistinctSplit, "media_cast", s.GetFQN()))
}

func (s *BigQuerySource) AllTitles(ctx context.Context) ([]string, error) {
	titles, err := s.queryStrings(ctx, fmt.Sprintf(QryBQAllTitles, s.GetFQN()))
	if err != nil {
		return nil, err
	}
	for i, title := range titles {
		titles[i] = formatting.UnescapeTitle(title)
	}
	return titles, nil
}

func (s *BigQuerySource) MediaByTitle(ctx context.Context, title string) (*model.Media, error) {
	media, err := s.queryMedia(ctx, " WHERE "+QryBQTitleClause, []bigquery.QueryParameter{{Name: "title", Value: title}})
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
func (s *BigQuerySource) MediaByID(ctx context.Context, id string) (*model.Media, error) {
	titles, err := s.queryStrings(ctx, fmt.Sprintf(QryBQAllTitles, s.GetFQN()))
	if err != nil {
		return nil, err
	}
	title, ok := titleForID(titles, id)
	if !ok {
		return nil, ErrNotFound
	}
	media, err := s.queryMedia(ctx, " WHERE title = @title", []bigquery.QueryParameter{{Name: "title", Value: title}})
	if err != nil {
		return nil, err
	}
	if len(media) == 0 {
		return nil, ErrNotFound
	}
	return media[0], nil
}

func (s *BigQuerySource) Stats(ctx context.Context) ([]model.ServiceCount, error) {
	itr, err := s.read(ctx, fmt.Sprintf(QryBQServiceCounts, s.GetFQN()), nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for {
		var row model.ServiceCount
		err := itr.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate results: %w", err)
		}
		counts[row.Service] = row.Titles
	}
	return orderStats(counts), nil
}

// Close is a no-op; the client belongs to cloud.ServiceClients.
func (s *BigQuerySource) Close() error {
	return nil
}
