package enveloprv1

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// CodecName is the content-subtype the API is served with. The codec takes
// over gRPC's default "proto" codec and hands generated messages (health,
// reflection) to the protobuf runtime.
const CodecName = "proto"

// Message is implemented by every request and response of envelopr.v1.Files.
// The encoding is protobuf binary as described in files.proto.
type Message interface {
	MarshalWire(b []byte) []byte
	UnmarshalWire(b []byte) error
}

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case Message:
		return m.MarshalWire(nil), nil
	case proto.Message:
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("codec: cannot marshal %T", v)
}

func (codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case Message:
		return m.UnmarshalWire(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("codec: cannot unmarshal into %T", v)
}

func (codec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(codec{})
}
