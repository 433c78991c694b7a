package grpctransport

import (
	"context"

	"google.golang.org/grpc"

	"github.com/sqlkit/sqlcore/transport"
)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*transport.Transport)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RoundTrip",
			Handler:    roundTripHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

// Serve registers t on s: every incoming frame is answered by t.RoundTrip.
func Serve(s grpc.ServiceRegistrar, t transport.Transport) {
	s.RegisterService(&serviceDesc, t)
}

func roundTripHandler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	var in frame
	if err := dec(&in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		out, err := srv.(transport.Transport).RoundTrip(ctx, *req.(*frame)) //nolint:forcetypeassert
		if err != nil {
			return nil, err
		}

		return frame(out), nil
	}
	if interceptor == nil {
		return handler(ctx, &in)
	}

	return interceptor(ctx, &in, &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: fullMethod,
	}, handler)
}
