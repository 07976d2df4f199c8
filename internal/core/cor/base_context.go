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

// Package cor (Chain of Responsibility) provides the building blocks used to
// run a sequence of steps over a shared state. This file provides BaseContext,
// the default Context implementation.
package cor

import (
	"context"
)

// BaseContext is a property bag for one chain execution.
type BaseContext struct {
	data     map[string]interface{} // Arbitrary key-value data shared between commands.
	errors   map[string]error       // Errors keyed by the name of the command that produced them.
	cleanups []func()               // Actions run by Close.
	context  context.Context        // The Go context for cancellation and tracing.
}

// NewBaseContext creates an empty BaseContext.
func NewBaseContext() Context {
	return &BaseContext{
		data:   make(map[string]interface{}),
		errors: make(map[string]error),
	}
}

// SetContext sets the underlying Go context. The BaseChain uses it to scope
// each command to its own span.
func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

// GetContext retrieves the underlying Go context.
func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// OnClose registers a cleanup action.
func (c *BaseContext) OnClose(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

// Close runs the registered cleanup actions, last registered first.
func (c *BaseContext) Close() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}

// Add stores a key-value pair.
//
// Inputs:
//   - key: The string key to store the data under.
//   - value: The data (of any type) to store.
//
// Outputs:
//   - Context: The context instance, allowing for fluent method chaining.
func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

// AddError records an error under the name of the command that produced it.
func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

// GetErrors returns the map of collected errors.
func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

// Get retrieves a value by key, or nil when absent.
func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

// Remove deletes a key-value pair.
func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

// HasErrors reports whether any error has been recorded.
func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

// FirstError returns one of the recorded errors, or nil. Chains stop at the
// first failure by default, so there is usually only one.
func FirstError(c Context) error {
	for _, err := range c.GetErrors() {
		return err
	}
	return nil
}
