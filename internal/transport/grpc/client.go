package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/qtrinova/eactranslator/internal/message"
)

// Client calls a running daemon.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target (host:port). The connection is plaintext and
// uses the JSON codec; extra options are appended.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Translate calls the Translate method.
func (c *Client) Translate(ctx context.Context, req *TranslateRequest) (*TranslateResponse, error) {
	out := new(TranslateResponse)
	if err := c.conn.Invoke(ctx, TranslateMethod, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dispatch calls the Dispatch method.
func (c *Client) Dispatch(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	out := new(message.DispatchResult)
	if err := c.conn.Invoke(ctx, DispatchMethod, msg, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }
