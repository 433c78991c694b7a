package grpctransport

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// frame is an encoded request or response passed through gRPC untouched.
type frame []byte

// codec moves frames without any further encoding.
type codec struct{}

const codecName = "sqlcore-frame"

func init() {
	encoding.RegisterCodec(codec{})
}

func (codec) Name() string {
	return codecName
}

func (codec) Marshal(v any) ([]byte, error) {
	switch f := v.(type) {
	case frame:
		return f, nil
	case *frame:
		return *f, nil
	default:
		return nil, fmt.Errorf("grpctransport: cannot marshal %T", v)
	}
}

func (codec) Unmarshal(data []byte, v any) error {
	f, ok := v.(*frame)
	if !ok {
		return fmt.Errorf("grpctransport: cannot unmarshal into %T", v)
	}
	*f = append((*f)[:0], data...)

	return nil
}
