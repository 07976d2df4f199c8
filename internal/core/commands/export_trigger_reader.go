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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// entry command of the catalog reload workflow.
//
// Logic Flow:
// Cloud Storage publishes a notification to Pub/Sub whenever an object in the
// export bucket is created or updated. This command parses that message.
//
//  1. The command receives the raw Pub/Sub message data as a JSON string from the context.
//  2. It unmarshals the JSON into a `cloud.GCSPubSubNotification`.
//  3. Objects that are not one of the services' exports (by file name) are
//     ignored: the command records the object under IgnoredObjectKey and
//     produces no output, so the rest of the chain does not run.
//  4. Otherwise a simplified `cloud.GCSObject` is placed in the context, both
//     under its well-known key and as the command's output.
package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-stream-search/internal/cloud"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/ingest"
)

// IgnoredObjectKey holds the object of a notification that did not concern an export.
const IgnoredObjectKey = "__IGNORED_OBJECT__"

// ExportTriggerToGCSObject parses a GCS Pub/Sub notification and extracts
// the uploaded export's location.
type ExportTriggerToGCSObject struct {
	cor.BaseCommand
}

// NewExportTriggerToGCSObject is the constructor for the ExportTriggerToGCSObject command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *ExportTriggerToGCSObject: A pointer to the newly instantiated command.
func NewExportTriggerToGCSObject(name string) *ExportTriggerToGCSObject {
	return &ExportTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the notification held in the input parameter.
func (c *ExportTriggerToGCSObject) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.Fail(context, fmt.Errorf("expected a notification string, got %T", context.Get(c.GetInputParam())))
		return
	}

	var out cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	msg := &cloud.GCSObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType}
	if _, ok := ingest.ServiceForObject(out.Name); !ok {
		slog.InfoContext(context.GetContext(), "ignoring object that is not an export", "object", msg.URI())
		context.Add(IgnoredObjectKey, msg)
		c.Succeed(context)
		return
	}

	c.Succeed(context)
	context.Add(cloud.GetGCSObjectName(), msg)
	context.Add(c.GetOutputParam(), msg)
}
