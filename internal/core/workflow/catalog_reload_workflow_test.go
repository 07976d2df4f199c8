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

package workflow_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"

	"github.com/jaycherian/gcp-go-stream-search/internal/core/catalog"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/commands"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/model"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-stream-search/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var logger = otelslog.NewLogger("catalog-reload-workflow-test")

func run(w cor.Command, message string) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, message)
	w.Execute(chainCtx)
	return chainCtx
}

func TestCatalogReload(t *testing.T) {
	served := catalog.New()
	reload := workflow.NewCatalogReloadWorkflow(served, ingest.NewLoader(nil), test.Sources())

	chainCtx := run(reload, test.GetTestExportMessageText())

	for k, err := range chainCtx.GetErrors() {
		logger.Error("reload step failed", "command", k, "error", err)
	}
	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, 7, served.Len())
	assert.Equal(t, 7, chainCtx.Get(cor.CtxOut))
}

func TestCatalogReloadIgnoresOtherObjects(t *testing.T) {
	served := test.LoadCatalog(t)
	reload := workflow.NewCatalogReloadWorkflow(served, ingest.NewLoader(nil), []ingest.Source{
		{Service: model.Netflix, Location: "does/not/exist.csv"},
	})

	message := strings.ReplaceAll(test.GetTestExportMessageText(), "netflix_titles.csv", "poster.png")
	chainCtx := run(reload, message)

	assert.False(t, chainCtx.HasErrors())
	assert.NotNil(t, chainCtx.Get(commands.IgnoredObjectKey))
	assert.Equal(t, 7, served.Len())
}

func TestCatalogReloadKeepsCatalogOnFailure(t *testing.T) {
	served := test.LoadCatalog(t)
	reload := workflow.NewCatalogReloadWorkflow(served, ingest.NewLoader(nil), []ingest.Source{
		{Service: model.Netflix, Location: "does/not/exist.csv"},
	})

	chainCtx := run(reload, test.GetTestExportMessageText())

	assert.True(t, chainCtx.HasErrors())
	assert.Contains(t, chainCtx.GetErrors(), "load-catalog")
	assert.Equal(t, 7, served.Len())
}

func TestCatalogReloadRejectsBadMessage(t *testing.T) {
	reload := workflow.NewCatalogReloadWorkflow(catalog.New(), ingest.NewLoader(nil), test.Sources())
	chainCtx := run(reload, "not json")
	assert.Contains(t, chainCtx.GetErrors(), "export-trigger-to-gcs-object")
}

func TestCatalogSwapRefusesEmptyCatalog(t *testing.T) {
	served := test.LoadCatalog(t)
	swap := commands.NewCatalogSwap("swap", served)

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, catalog.New())
	swap.Execute(chainCtx)

	assert.ErrorIs(t, cor.FirstError(chainCtx), commands.ErrEmptyCatalog)
	assert.Equal(t, 7, served.Len())
}

func TestListenerReloadsCatalog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := pstest.NewServer()
	defer srv.Close()
	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client, err := pubsub.NewClient(ctx, "streamsearch-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	defer client.Close()

	topic, err := client.CreateTopic(ctx, "streamsearch-exports")
	require.NoError(t, err)
	defer topic.Stop()
	_, err = client.CreateSubscription(ctx, "streamsearch-export-sub", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	listener, err := cloud.NewPubSubListener(client, "streamsearch-export-sub", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, listener.Handle(ctx, []byte(test.GetTestExportMessageText())), cloud.ErrNoCommand)

	served := catalog.New()
	listener.SetCommand(workflow.NewCatalogReloadWorkflow(served, ingest.NewLoader(nil), test.Sources()))
	listener.Listen(ctx)
	defer cancel() // Stop receiving before the client and server shut down.

	_, err = topic.Publish(ctx, &pubsub.Message{Data: []byte(test.GetTestExportMessageText())}).Get(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return served.Len() == 7 }, 10*time.Second, 50*time.Millisecond)
}
