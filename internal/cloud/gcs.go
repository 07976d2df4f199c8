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

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file defines the Cloud Storage models used to load CSV exports from a bucket:
// the `gs://` URI form of an export location, the JSON payload of bucket notifications
// that trigger a catalog reload, and a reader over a stored object.
//
// Structs:
//   - GCSPubSubNotification: Maps to the JSON payload of GCS event notifications.
//   - GCSObject: A simplified internal model of a stored object.
//
// Functions:
//   - GetGCSObjectName: Returns the context key under which a GCSObject is stored.
//   - IsGCSURI, ParseGCSURI: Recognize and split `gs://bucket/object` locations.
//   - OpenGCSObject: Opens a reader over a stored object.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSScheme is the URI prefix of Cloud Storage locations.
const GCSScheme = "gs://"

// ErrInvalidGCSURI is returned when a location is not of the form gs://bucket/object.
var ErrInvalidGCSURI = errors.New("invalid GCS URI")

// GetGCSObjectName returns the key used within a chain context to store the
// `GCSObject` being processed.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// GCSPubSubNotification maps the JSON payload that Cloud Storage publishes to
// Pub/Sub when an object in a monitored bucket is created or updated.
type GCSPubSubNotification struct {
	Kind                    string                 `json:"kind"`                    // The kind of the object, typically "storage#object".
	ID                      string                 `json:"id"`                      // The full ID of the object, including bucket and generation.
	SelfLink                string                 `json:"selfLink"`                // The URI for this object.
	Name                    string                 `json:"name"`                    // The name of the object within the bucket.
	Bucket                  string                 `json:"bucket"`                  // The name of the bucket containing the object.
	Generation              string                 `json:"generation"`              // The generation number of the object's content.
	MetaGeneration          string                 `json:"metageneration"`          // The generation number of the object's metadata.
	ContentType             string                 `json:"contentType"`             // The MIME type of the object's content.
	TimeCreated             string                 `json:"timeCreated"`             // The creation time of the object.
	Updated                 string                 `json:"updated"`                 // The last modification time of the object.
	Size                    string                 `json:"size"`                    // The size of the object in bytes.
	MD5Hash                 string                 `json:"md5Hash"`                 // The MD5 hash of the object's content.
	MediaLink               string                 `json:"mediaLink"`               // A link to download the object's content.
	MetaData                map[string]interface{} `json:"metadata"`                // User-provided metadata, if any.
	Crc32c                  string                 `json:"crc32c"`                  // The CRC32C checksum of the object's content.
	ETag                    string                 `json:"etag"`                    // The HTTP ETag of the object.
	StorageClass            string                 `json:"storageClass"`            // The storage class of the object.
	TimeStorageClassUpdated string                 `json:"timeStorageClassUpdated"` // The time the storage class was last updated.
}

// GCSObject is the simplified representation of a stored object passed
// between commands.
type GCSObject struct {
	Bucket   string // The name of the GCS bucket.
	Name     string // The name of the object.
	MIMEType string // The MIME type of the object (e.g., "text/csv").
}

// URI returns the gs:// location of the object.
func (o *GCSObject) URI() string {
	return GCSScheme + o.Bucket + "/" + o.Name
}

// IsGCSURI reports whether a location refers to Cloud Storage.
func IsGCSURI(location string) bool {
	return strings.HasPrefix(location, GCSScheme)
}

// ParseGCSURI splits a gs://bucket/object location into its parts.
//
// Inputs:
//   - uri: The location, e.g. "gs://exports/netflix_titles.csv".
//
// Outputs:
//   - *GCSObject: The bucket and object name.
//   - error: ErrInvalidGCSURI when either part is missing.
func ParseGCSURI(uri string) (*GCSObject, error) {
	if !IsGCSURI(uri) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGCSURI, uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, GCSScheme), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: unable to determine bucket and object from %s", ErrInvalidGCSURI, uri)
	}
	return &GCSObject{Bucket: parts[0], Name: parts[1]}, nil
}

// OpenGCSObject opens a reader over a stored object. The caller closes it.
func OpenGCSObject(ctx context.Context, client *storage.Client, uri string) (io.ReadCloser, error) {
	obj, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	r, err := client.Bucket(obj.Bucket).Object(obj.Name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Bucket(%q).Object(%q).NewReader: %w", obj.Bucket, obj.Name, err)
	}
	return r, nil
}
