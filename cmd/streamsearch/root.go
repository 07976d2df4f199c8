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
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/formatting"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/services"
	"github.com/spf13/cobra"
)

const (
	msgNoFilter  = "Please provide at least one filter: --actor, --category, or --year"
	msgNoResults = "No matching results found."
)

var titleColor = color.New(color.FgCyan, color.Bold)

type searchOptions struct {
	actor      string
	category   string
	year       int
	titlesOnly bool
}

// newRootCmd builds the streamsearch command and its subcommands. The
// persistent --source flag selects the data source for every command.
func newRootCmd(a *app) *cobra.Command {
	var source string
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:          "streamsearch",
		Short:        "Search for movies/shows across streaming platforms.",
		Long:         "StreamSearch searches the combined Netflix, Amazon Prime, Disney+ and Hulu catalog by actor, category and release year.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria := model.Criteria{
				Actor:    strings.TrimSpace(opts.actor),
				Category: strings.TrimSpace(opts.category),
				Year:     opts.year,
			}
			if criteria.IsEmpty() {
				fmt.Fprintln(cmd.OutOrStdout(), msgNoFilter)
				return nil
			}
			return a.withSource(cmd.Context(), source, func(ctx context.Context, ds services.DataSource) error {
				media, err := services.Search(ctx, ds, criteria)
				if err != nil {
					return err
				}
				display(cmd.OutOrStdout(), media, opts.titlesOnly)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.actor, "actor", "a", "", "Filter by actor name")
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "Filter by category")
	cmd.Flags().IntVarP(&opts.year, "year", "y", 0, "Filter by minimum release year")
	cmd.Flags().BoolVar(&opts.titlesOnly, "titles", false, "Print titles only")
	cmd.PersistentFlags().StringVar(&source, "source", "", "Data source: catalog, postgres, sqlite or bigquery (default from configuration)")

	cmd.AddCommand(newCategoriesCmd(a, &source), newStatsCmd(a, &source), newImportCmd(a, &source))
	return cmd
}

// configFor loads the configuration and applies the --source override.
func (a *app) configFor(source string) (*cloud.Config, error) {
	config, err := a.config()
	if err != nil {
		return nil, err
	}
	if source != "" {
		config.DataSource.Mode = source
	}
	return config, nil
}

// withSource opens the selected data source, runs fn and closes the source.
func (a *app) withSource(ctx context.Context, source string, fn func(context.Context, services.DataSource) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	config, err := a.configFor(source)
	if err != nil {
		return err
	}
	ds, err := a.openSource(ctx, config)
	if err != nil {
		return err
	}
	defer ds.Close()
	return fn(ctx, ds)
}

// display prints one result per line with its fields separated by " | ".
func display(w io.Writer, media []*model.Media, titlesOnly bool) {
	if len(media) == 0 {
		fmt.Fprintln(w, msgNoResults)
		return
	}
	for _, m := range media {
		if titlesOnly {
			fmt.Fprintln(w, titleColor.Sprint(m.Title))
			continue
		}
		row := formatting.MediaRow(m)
		fmt.Fprintln(w, titleColor.Sprint(m.Title)+strings.TrimPrefix(row, m.Title))
	}
}
