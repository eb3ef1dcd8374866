// Package transport defines the interface for pluggable request transports.
//
// Each transport (HTTP/WebSocket, gRPC) accepts requests in its own wire
// format, turns them into a message.Message and hands them to the Handler.
// The dispatcher doesn't care how messages arrive.
package transport

import (
	"context"
	"errors"

	"github.com/qtrinova/eactranslator/internal/message"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/tone"
)

// Handler processes an incoming message and returns a result.
// The dispatcher provides this handler to each transport.
type Handler func(ctx context.Context, msg *message.Message) (*message.DispatchResult, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier ("http", "grpc").
	Name() string

	// Listen starts accepting requests and blocks until ctx is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}

// IsInvalid reports whether err was caused by the request rather than by
// the service.
func IsInvalid(err error) bool {
	return errors.Is(err, message.ErrInvalid) ||
		errors.Is(err, route.ErrUnknownDirection) ||
		errors.Is(err, tone.ErrUnknownTone)
}
