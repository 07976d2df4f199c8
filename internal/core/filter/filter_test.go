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

package filter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/filter"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	test "github.com/jaycherian/gcp-go-stream-search/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilter(t *testing.T) *filter.Filter {
	return filter.New(test.LoadCatalog(t))
}

func TestByActor(t *testing.T) {
	f := newFilter(t)
	assert.Equal(t, []string{"The Grand Seduction"}, f.ByActor("brendan gleeson").Data().Titles())

	f.Refresh()
	assert.Equal(t, []string{"Duck the Halls: A Mickey Mouse Christmas Special"}, f.ByActor("TONY").Data().Titles())

	f.Refresh()
	assert.Empty(t, f.ByActor("Nonexistent Actor").Data().Titles())
}

func TestByCategoryMatchesSubstrings(t *testing.T) {
	f := newFilter(t)
	assert.Equal(t, []string{
		"Blood & Water", // listed in "TV Dramas"
		"Silent Night",
		"Take Care Good Night",
		"The Grand Seduction",
	}, f.ByCategory("DRAMA").Data().Titles())

	f.Refresh()
	assert.Empty(t, f.ByCategory("Action").Data().Titles())
}

func TestByYear(t *testing.T) {
	f := newFilter(t)
	assert.Equal(t, []string{
		"Blood & Water",
		"Ricky Velez: Here's Everything",
		"Silent Night",
	}, f.ByYearOnward(2021).Data().Titles())

	f.Refresh()
	assert.Equal(t, []string{
		"Duck the Halls: A Mickey Mouse Christmas Special",
		"The Grand Seduction",
	}, f.ByYearUntil(2016).Data().Titles())
}

func TestPredicatesCompose(t *testing.T) {
	f := newFilter(t)
	got := f.ByCategory("comedy").ByYearOnward(2021).Data()
	assert.Equal(t, []string{"Ricky Velez: Here's Everything", "Silent Night"}, got.Titles())

	assert.Equal(t, 7, f.Refresh().Data().Len())
}

func TestForCL(t *testing.T) {
	ctx := context.Background()
	f := newFilter(t)

	got, err := f.ForCL(ctx, model.Criteria{Actor: "keira", Category: "horror", Year: 2020})
	require.NoError(t, err)
	assert.Equal(t, []string{"Silent Night"}, got.Titles())

	// Each search starts from the full catalog.
	got, err = f.ForCL(ctx, model.Criteria{Year: 2021})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	got, err = f.ForCL(ctx, model.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 7, got.Len())
}

func TestForWeb(t *testing.T) {
	ctx := context.Background()
	f := newFilter(t)

	got, err := f.ForWeb(ctx, "Brendan_Gleeson", "x", "_")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Grand Seduction"}, got.Titles())

	got, err = f.ForWeb(ctx, "-", "TV%20Mysteries", "2020")
	require.NoError(t, err)
	assert.Equal(t, []string{"Blood & Water"}, got.Titles())

	got, err = f.ForWeb(ctx, "-", "stand-up", "-")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ricky Velez: Here's Everything"}, got.Titles())

	_, err = f.ForWeb(ctx, "_", "_", "twenty")
	assert.True(t, errors.Is(err, filter.ErrInvalidYear))
}

func TestParseWebCriteria(t *testing.T) {
	c, err := filter.ParseWebCriteria("Emma%20Stone", "-", "2019")
	require.NoError(t, err)
	assert.Equal(t, model.Criteria{Actor: "emma stone", Year: 2019}, c)

	c, err = filter.ParseWebCriteria("x", "_", "-")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestFilteredDataViews(t *testing.T) {
	f := newFilter(t)
	got := f.ByActor("gleeson").Data()

	media := got.Media()
	require.Len(t, media, 1)
	assert.Equal(t, "The Grand Seduction", media[0].Title)
	assert.Equal(t, "The Grand Seduction", got.WebTitles())
	assert.Equal(t, "Blood &amp; Water", f.Refresh().ByActor("ama qamata").Data().WebTitles())
	assert.Contains(t, got.Verbose(), "The Grand Seduction")

	two := filter.NewFilteredData(map[string]*model.Media{
		"B": model.NewMedia("B"),
		"A": model.NewMedia("A"),
	})
	assert.Equal(t, "A</br>B", two.WebTitles())
}

func TestCriterionCommandRejectsBadInput(t *testing.T) {
	cmd := filter.NewActorCommand()
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(cor.CtxIn, []string{"not", "a", "working", "set"})
	chCtx.Add(filter.CriteriaKey, model.Criteria{Actor: "x"})

	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)
	assert.True(t, chCtx.HasErrors())
	assert.Contains(t, chCtx.GetErrors(), "filter-by-actor")
}

func TestCriterionCommandNeedsCriteria(t *testing.T) {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(cor.CtxIn, map[string]*model.Media{})
	assert.False(t, filter.NewYearOnwardCommand().IsExecutable(chCtx))
}
