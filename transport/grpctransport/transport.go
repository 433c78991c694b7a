// Package grpctransport carries request frames over a unary gRPC method.
package grpctransport

import (
	"context"

	"google.golang.org/grpc"

	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/transport"
)

const (
	serviceName = "sqlcore.Transport"
	fullMethod  = "/" + serviceName + "/RoundTrip"
)

var _ transport.Transport = (*Transport)(nil)

type Transport struct {
	cc    grpc.ClientConnInterface
	opts  []grpc.CallOption
	close func() error
}

// New makes a Transport over a shared client connection. Closing the
// Transport leaves cc open.
func New(cc grpc.ClientConnInterface, opts ...grpc.CallOption) *Transport {
	return &Transport{
		cc:   cc,
		opts: append([]grpc.CallOption{grpc.ForceCodec(codec{})}, opts...),
		close: func() error {
			return nil
		},
	}
}

// Factory dials target once per connection. The client connection is closed
// with the Transport.
func Factory(target string, opts ...grpc.DialOption) transport.Factory {
	return func(ctx context.Context) (transport.Transport, error) {
		cc, err := grpc.NewClient(target, opts...)
		if err != nil {
			return nil, xerrors.WithStackTrace(err)
		}
		t := New(cc)
		t.close = cc.Close

		return t, nil
	}
}

func (t *Transport) RoundTrip(ctx context.Context, request []byte) ([]byte, error) {
	var response frame
	if err := t.cc.Invoke(ctx, fullMethod, frame(request), &response, t.opts...); err != nil {
		return nil, xerrors.WithStackTrace(err)
	}

	return response, nil
}

func (t *Transport) Close() error {
	return t.close()
}
