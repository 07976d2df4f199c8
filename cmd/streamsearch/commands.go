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

package main

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
	"github.com/spf13/cobra"
)

func newCategoriesCmd(a *app, source *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List every category in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSource(cmd.Context(), *source, func(ctx context.Context, ds services.DataSource) error {
				categories, err := ds.AllCategories(ctx)
				if err != nil {
					return err
				}
				for _, category := range categories {
					fmt.Fprintln(cmd.OutOrStdout(), category)
				}
				return nil
			})
		},
	}
}

func newStatsCmd(a *app, source *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count the titles of each streaming service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSource(cmd.Context(), *source, func(ctx context.Context, ds services.DataSource) error {
				counts, err := ds.Stats(ctx)
				if err != nil {
					return err
				}
				for _, c := range counts {
					fmt.Fprintf(cmd.OutOrStdout(), "%s | %d\n", c.Service, c.Titles)
				}
				return nil
			})
		},
	}
}

// newImportCmd loads the CSV exports into the configured SQL table, creating
// it first when needed.
func newImportCmd(a *app, source *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the CSV exports into the postgres or sqlite table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			config, err := a.configFor(*source)
			if err != nil {
				return err
			}
			s, err := a.openSQL(ctx, config)
			if err != nil {
				return err
			}
			defer s.Close()

			rows, err := a.loadRows(ctx, config)
			if err != nil {
				return err
			}
			if err := s.CreateSchema(ctx); err != nil {
				return err
			}
			inserted, err := s.Import(ctx, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows into %s\n", inserted, s.Table)
			return nil
		},
	}
}
