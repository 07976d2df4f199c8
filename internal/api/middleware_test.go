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

package api

import (
	"testing"
	"time"

	"github.com/zeebo/assert"
	"golang.org/x/time/rate"
)

func TestClientLimitersArePerClient(t *testing.T) {
	now := time.Now()
	l := &clientLimiters{clients: make(map[string]*clientLimiter), limit: rate.Limit(0.001), burst: 1, lastSweep: now}

	assert.Equal(t, l.get("10.0.0.1", now).AllowN(now, 1), true)
	assert.Equal(t, l.get("10.0.0.1", now).AllowN(now, 1), false)
	assert.Equal(t, l.get("10.0.0.2", now).AllowN(now, 1), true)
	assert.Equal(t, len(l.clients), 2)
}

func TestClientLimitersSweepIdleClients(t *testing.T) {
	now := time.Now()
	l := &clientLimiters{clients: make(map[string]*clientLimiter), limit: rate.Limit(1), burst: 1, lastSweep: now}

	l.get("10.0.0.1", now)
	later := now.Add(2 * clientIdleTimeout)
	l.get("10.0.0.2", later)

	_, kept := l.clients["10.0.0.1"]
	assert.Equal(t, kept, false)
	assert.Equal(t, len(l.clients), 1)
}
