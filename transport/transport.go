// Package transport declares the byte-oriented exchange the driver core runs
// on top of. Implementations carry one encoded request to the server and
// return its encoded response.
package transport

import (
	"context"
)

//go:generate mockgen -destination ../internal/mock/transport.go --typed -package mock -write_package_comment=false . Transport

type Transport interface {
	// RoundTrip sends one request frame and waits for its response frame.
	// Any returned error is treated by the core as a lost connection unless
	// it is caused by ctx.
	RoundTrip(ctx context.Context, request []byte) ([]byte, error)

	Close() error
}

// Func adapts an ordinary function to a Transport without resources to
// release.
type Func func(ctx context.Context, request []byte) ([]byte, error)

func (f Func) RoundTrip(ctx context.Context, request []byte) ([]byte, error) {
	return f(ctx, request)
}

func (f Func) Close() error {
	return nil
}

// Factory opens a new Transport, one per connection.
type Factory func(ctx context.Context) (Transport, error)
