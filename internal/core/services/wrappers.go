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
// This file implements a decorator that adds client-side rate limiting to any
// DataSource, so a shared backend (a Cloud SQL instance, a BigQuery project's
// query quota) is never called faster than configured.
package services

import (
	"context"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"golang.org/x/time/rate"
)

// QuotaAwareSource wraps a DataSource and waits for a rate-limiter token
// before every call. Close is not limited.
type QuotaAwareSource struct {
	Wrapped   DataSource
	RateLimit *rate.Limiter
}

// NewQuotaAwareSource limits wrapped to requestsPerSecond calls with the
// given burst. A non-positive rate returns wrapped unchanged.
//
// Inputs:
//   - wrapped: The source to protect.
//   - requestsPerSecond: The sustained number of calls allowed per second.
//   - burst: The number of calls allowed at once; raised to 1 if lower.
//
// Outputs:
//   - DataSource: The decorated source.
func NewQuotaAwareSource(wrapped DataSource, requestsPerSecond float64, burst int) DataSource {
	if requestsPerSecond <= 0 {
		return wrapped
	}
	if burst < 1 {
		burst = 1
	}
	return &QuotaAwareSource{
		Wrapped:   wrapped,
		RateLimit: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (q *QuotaAwareSource) MediaByActor(ctx context.Context, actor string) ([]*model.Media, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.MediaByActor(ctx, actor)
}

func (q *QuotaAwareSource) MediaByCategory(ctx context.Context, category string) ([]*model.Media, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.MediaByCategory(ctx, category)
}

func (q *QuotaAwareSource) MediaLaterThan(ctx context.Context, year int) ([]*model.Media, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.MediaLaterThan(ctx, year)
}

func (q *QuotaAwareSource) MediaByAdvancedFilter(ctx context.Context, criteria model.Criteria) ([]*model.Media, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.MediaByAdvancedFilter(ctx, criteria)
}

func (q *QuotaAwareSource) AllCategories(ctx context.Context) ([]string, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.AllCategories(ctx)
}

func (q *QuotaAwareSource) AllActors(ctx context.Context) ([]string, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.AllActors(ctx)
}

func (q *QuotaAwareSource) AllTitles(ctx context.Context) ([]string, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.AllTitles(ctx)
}

func (q *QuotaAwareSource) MediaByTitle(ctx context.Context, title string) (*model.Media, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.MediaByTitle(ctx, title)
}

func (q *QuotaAwareSource) MediaByID(ctx context.Context, id string) (*model.Media, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.MediaByID(ctx, id)
}

func (q *QuotaAwareSource) Stats(ctx context.Context) ([]model.ServiceCount, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Wrapped.Stats(ctx)
}

func (q *QuotaAwareSource) Close() error {
	return q.Wrapped.Close()
}
