// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge defines the transport between the CLI and a local Cursor agent
// bridge. The cursor provider depends on the Bridge interface only, which keeps
// the transport swappable and lets tests run against an in-process server.
package bridge

import (
	"context"

	"specforge/cli/internal/bridge/grpcclient"
	"specforge/cli/internal/bridge/model"
)

// Request is a task sent to the bridge.
type Request = model.Request

// Response is the bridge's answer.
type Response = model.Response

// Bridge represents a connection to the Cursor agent bridge.
type Bridge interface {
	// Connect prepares the transport. token may be empty when the bridge is unauthenticated.
	Connect(ctx context.Context, addr string, token string) error
	Generate(ctx context.Context, req model.Request) (model.Response, error)
	Validate(ctx context.Context, req model.Request) (model.Response, error)
	Close() error
}

// New creates a new bridge instance backed by gRPC.
func New() Bridge {
	return &grpcclient.Client{}
}
