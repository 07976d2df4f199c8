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

// Package cloud provides components for interacting with Google Cloud services.
// This file defines a generic, reusable Pub/Sub message listener. Receiving
// messages is separated from processing them: each message is handed to a
// "Command" and acknowledged only when the command succeeds.
//
// Logic Flow:
//  1. An instance of PubSubListener is created with a client and a subscription ID.
//  2. A "Command" (the catalog reload chain) is attached to this listener.
//  3. The `Listen` method starts a goroutine that receives from the subscription.
//  4. Each message is passed to the command inside a fresh chain context.
//  5. The message is acknowledged only if the command completes without errors,
//     otherwise it is redelivered under the subscription's retry policy.
//
// Structs:
//   - PubSubListener: Manages the connection to a Pub/Sub subscription and holds
//     the command that will process incoming messages.
//
// Functions:
//   - NewPubSubListener: Constructor for creating a new PubSubListener.
//   - SetCommand: Attaches a processing command to the listener.
//   - Listen: Starts the background process to receive and handle messages.
//   - Handle: Processes a single message payload.
package cloud

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-stream-search/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoCommand is returned when a message arrives before a command is attached.
var ErrNoCommand = errors.New("listener has no command")

// PubSubListener connects a Pub/Sub subscription to the command that processes
// its messages. Listeners outlive individual requests, so they are owned by
// the service clients rather than by a handler.
type PubSubListener struct {
	client       *pubsub.Client       // The client for interacting with the Pub/Sub service.
	subscription *pubsub.Subscription // The subscription this listener pulls messages from.
	command      cor.Command          // The command to execute for each message received.
}

// NewPubSubListener creates a listener for the given subscription.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client for connecting to the service.
//   - subscriptionID: The string ID of the subscription (e.g., "csv-export-sub").
//   - command: The command to run for each message; may be nil and set later.
//
// Outputs:
//   - *PubSubListener: The configured listener.
//   - error: Always nil; kept so construction can validate in the future.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: pubsubClient.Subscription(subscriptionID),
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches a command to the listener. A command that is already
// set is never overwritten.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Handle runs the listener's command over a single message payload.
//
// Inputs:
//   - ctx: The context carrying the message's span.
//   - data: The raw message payload.
//
// Outputs:
//   - error: The first error reported by the command, or ErrNoCommand.
func (m *PubSubListener) Handle(ctx context.Context, data []byte) error {
	if m.command == nil {
		return ErrNoCommand
	}
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, string(data))
	defer chainCtx.Close()

	m.command.Execute(chainCtx)
	if chainCtx.HasErrors() {
		for _, e := range chainCtx.GetErrors() {
			slog.ErrorContext(ctx, "error executing chain", "error", e)
		}
		return cor.FirstError(chainCtx)
	}
	return nil
}

// Listen starts receiving messages in a background goroutine. Receiving stops
// when ctx is canceled.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.Info("listening", "subscription", m.subscription.ID())

	go func() {
		tracer := otel.Tracer("message-listener")

		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-message")
			defer span.End()
			span.SetAttributes(attribute.String("msg", string(msg.Data)))
			slog.DebugContext(spanCtx, "received message", "id", msg.ID)

			if err := m.Handle(spanCtx, msg.Data); err != nil {
				// Not acknowledged, so the message is redelivered after its deadline.
				span.SetStatus(codes.Error, "failed")
				return
			}
			span.SetStatus(codes.Ok, "success")
			msg.Ack()
		})
		if err != nil {
			slog.Error("error receiving data", "subscription", m.subscription.ID(), "error", err)
		}
	}()
}
