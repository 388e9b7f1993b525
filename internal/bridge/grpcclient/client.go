// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcclient implements the Cursor agent bridge transport over gRPC.
// Calls are unary and carry google.protobuf.Struct payloads, so the client is
// driven through ClientConn.Invoke with literal method names.
package grpcclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"

	"specforge/cli/internal/bridge/model"
	apperrors "specforge/cli/internal/errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully qualified method names served by the bridge.
const (
	MethodGenerate = "/specforge.cursor.v1.AgentBridge/Generate"
	MethodValidate = "/specforge.cursor.v1.AgentBridge/Validate"
)

// Client implements bridge.Bridge. It is safe for concurrent use once connected.
type Client struct {
	mu    sync.RWMutex
	conn  *grpc.ClientConn
	token string
}

// Connect prepares a connection to addr. Loopback addresses use plaintext since the
// bridge runs next to the IDE; anything else requires TLS. The connection is lazy and
// the first call performs the dial.
func (c *Client) Connect(ctx context.Context, addr string, token string) error {
	if addr == "" {
		return apperrors.New(apperrors.ProviderUnavailable, "bridge address is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	var creds credentials.TransportCredentials
	if isLoopback(host) {
		creds = insecure.NewCredentials()
	} else {
		creds = credentials.NewTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return apperrors.Wrap(apperrors.ProviderUnavailable, "invalid bridge address", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = conn
	c.token = token
	return nil
}

// Generate runs a generate, test or refactor request on the bridge.
func (c *Client) Generate(ctx context.Context, req model.Request) (model.Response, error) {
	return c.call(ctx, MethodGenerate, req)
}

// Validate runs a validation request on the bridge.
func (c *Client) Validate(ctx context.Context, req model.Request) (model.Response, error) {
	return c.call(ctx, MethodValidate, req)
}

// Close releases the connection and forgets the token.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) call(ctx context.Context, method string, req model.Request) (model.Response, error) {
	c.mu.RLock()
	conn, token := c.conn, c.token
	c.mu.RUnlock()
	if conn == nil {
		return model.Response{}, apperrors.New(apperrors.ProviderUnavailable, "bridge not connected")
	}

	in, err := req.ToStruct()
	if err != nil {
		return model.Response{}, apperrors.Wrap(apperrors.InvalidTask, "encode bridge request", err)
	}
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}

	out := &structpb.Struct{}
	if err := conn.Invoke(ctx, method, in, out); err != nil {
		return model.Response{}, ClassifyError(err)
	}

	resp, err := model.ResponseFromStruct(out)
	if err != nil {
		return model.Response{}, apperrors.Wrap(apperrors.BadResponse, "decode bridge response", err)
	}
	return resp, nil
}

// ClassifyError maps a gRPC failure to an error with a readable message and kind.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.RequestFailed, "Cursor bridge timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(apperrors.RequestFailed, "request cancelled", err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return apperrors.Wrap(apperrors.RequestFailed, "Cursor bridge call failed", err)
	}

	switch st.Code() {
	case codes.Unavailable:
		return apperrors.Wrap(apperrors.RequestFailed, "Cursor bridge is not reachable; is the IDE running with the agent bridge enabled?", err)
	case codes.DeadlineExceeded:
		return apperrors.Wrap(apperrors.RequestFailed, "Cursor bridge timed out", err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return apperrors.Wrap(apperrors.ProviderUnavailable, "Cursor bridge rejected the credentials; run 'specforge keys set cursor'", err)
	case codes.Unimplemented:
		return apperrors.Wrap(apperrors.ProviderUnavailable, "Cursor bridge does not support this operation; update the extension", err)
	case codes.InvalidArgument:
		return apperrors.Wrap(apperrors.InvalidTask, fmt.Sprintf("Cursor bridge rejected the task: %s", st.Message()), err)
	case codes.ResourceExhausted:
		return apperrors.Wrap(apperrors.RequestFailed, "Cursor agent quota exhausted; try again later", err)
	case codes.Internal, codes.Unknown, codes.DataLoss:
		return apperrors.Wrap(apperrors.BadResponse, fmt.Sprintf("Cursor bridge internal error: %s", st.Message()), err)
	}
	return apperrors.Wrap(apperrors.RequestFailed, fmt.Sprintf("Cursor bridge call failed (%s)", st.Code()), err)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
